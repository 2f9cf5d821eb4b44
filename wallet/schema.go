// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/storage"
)

// key schema: Pool.Wallets[owner account bytes] → packed wallet

// Fetch - load a wallet, nil if no record exists
func Fetch(trx storage.Transaction, owner *account.Account) (*Wallet, error) {
	packed := trx.Get(storage.Pool.Wallets, owner.Bytes())
	if nil == packed {
		return nil, nil
	}
	w, err := UnpackWallet(packed)
	if nil != err {
		return nil, err
	}
	w.Owner = owner
	return w, nil
}

// FetchOrCreate - load a wallet, lazily creating an empty one
//
// a wallet that was never stored is a zero balance with no assets
func FetchOrCreate(trx storage.Transaction, owner *account.Account) (*Wallet, error) {
	w, err := Fetch(trx, owner)
	if nil != err {
		return nil, err
	}
	if nil == w {
		w = &Wallet{Owner: owner}
	}
	return w, nil
}

// Store - persist a wallet under its owner key
func Store(trx storage.Transaction, w *Wallet) {
	trx.Put(storage.Pool.Wallets, w.Owner.Bytes(), w.Pack())
}
