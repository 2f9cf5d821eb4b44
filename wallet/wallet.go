// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet - the ledger data model
//
// a wallet is a coin balance plus asset holdings, keyed by the packed
// bytes of its owner account; balance and every holding are always
// non-negative - mutators must never be called without a prior
// sufficiency check
package wallet

import (
	"encoding/binary"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/transactionrecord"
	"github.com/bitmark-inc/marketd/util"
)

// Wallet - one account's ledger state
//
// Owner is the storage key, carried on the struct so a loaded wallet
// can be stored back without re-threading the account; it is not part
// of the packed record
type Wallet struct {
	Owner   *account.Account          `json:"owner"` // base58
	Balance uint64                    `json:"balance"`
	Assets  []transactionrecord.Asset `json:"assets"`
}

// Increase - add coins to the balance
func (w *Wallet) Increase(amount uint64) {
	w.Balance += amount
}

// Decrease - remove coins from the balance
//
// the caller must have verified sufficiency; going negative is a
// programming error not a data outcome
func (w *Wallet) Decrease(amount uint64) {
	if w.Balance < amount {
		logger.Panicf("wallet.Decrease: balance: %d < amount: %d", w.Balance, amount)
	}
	w.Balance -= amount
}

// IsSufficient - check the balance covers an amount
func (w *Wallet) IsSufficient(amount uint64) bool {
	return w.Balance >= amount
}

// IsAssetsInWallet - check every requested asset quantity is held
//
// quantities for a repeated identifier accumulate before checking
func (w *Wallet) IsAssetsInWallet(assets []transactionrecord.Asset) bool {
	required := make(map[transactionrecord.AssetIdentifier]uint64, len(assets))
	for _, item := range assets {
		required[item.Id] += item.Amount
	}
	for id, amount := range required {
		if w.holding(id) < amount {
			return false
		}
	}
	return true
}

// AddAssets - credit asset quantities, merging repeated identifiers
func (w *Wallet) AddAssets(assets []transactionrecord.Asset) {
asset_loop:
	for _, item := range assets {
		if 0 == item.Amount {
			continue asset_loop
		}
		for i, held := range w.Assets {
			if held.Id == item.Id {
				w.Assets[i].Amount += item.Amount
				continue asset_loop
			}
		}
		w.Assets = append(w.Assets, transactionrecord.Asset{
			Id:     item.Id,
			Amount: item.Amount,
		})
	}
}

// RemoveAssets - debit asset quantities, dropping exhausted holdings
//
// the caller must have verified presence via IsAssetsInWallet
func (w *Wallet) RemoveAssets(assets []transactionrecord.Asset) {
	if !w.IsAssetsInWallet(assets) {
		logger.Panicf("wallet.RemoveAssets: insufficient holdings for: %v", assets)
	}
	for _, item := range assets {
		for i, held := range w.Assets {
			if held.Id == item.Id {
				w.Assets[i].Amount -= item.Amount
				break
			}
		}
	}
	// drop zero holdings, preserving order
	kept := w.Assets[:0]
	for _, held := range w.Assets {
		if 0 != held.Amount {
			kept = append(kept, held)
		}
	}
	w.Assets = kept
}

// current holding of one asset
func (w *Wallet) holding(id transactionrecord.AssetIdentifier) uint64 {
	for _, held := range w.Assets {
		if held.Id == id {
			return held.Amount
		}
	}
	return 0
}

// Pack - serialize a wallet
//
// 8 byte big endian balance, Varint64 asset count, then per asset:
// identifier bytes, Varint64 quantity
func (w *Wallet) Pack() []byte {
	buffer := make([]byte, 8, 8+len(w.Assets)*(transactionrecord.AssetIdentifierLength+1))
	binary.BigEndian.PutUint64(buffer, w.Balance)
	buffer = append(buffer, util.ToVarint64(uint64(len(w.Assets)))...)
	for _, held := range w.Assets {
		buffer = append(buffer, held.Id[:]...)
		buffer = append(buffer, util.ToVarint64(held.Amount)...)
	}
	return buffer
}

// UnpackWallet - deserialize a wallet
func UnpackWallet(buffer []byte) (*Wallet, error) {
	if len(buffer) < 9 {
		return nil, fault.ErrWalletRecordCorrupt
	}
	w := &Wallet{
		Balance: binary.BigEndian.Uint64(buffer[:8]),
	}
	n := 8
	count, countLength := util.FromVarint64(buffer[n:])
	if 0 == countLength {
		return nil, fault.ErrWalletRecordCorrupt
	}
	n += countLength
	w.Assets = make([]transactionrecord.Asset, 0, count)
	for i := uint64(0); i < count; i += 1 {
		if n+transactionrecord.AssetIdentifierLength > len(buffer) {
			return nil, fault.ErrWalletRecordCorrupt
		}
		var id transactionrecord.AssetIdentifier
		err := transactionrecord.AssetIdentifierFromBytes(&id, buffer[n:n+transactionrecord.AssetIdentifierLength])
		if nil != err {
			return nil, err
		}
		n += transactionrecord.AssetIdentifierLength
		amount, amountLength := util.FromVarint64(buffer[n:])
		if 0 == amountLength {
			return nil, fault.ErrWalletRecordCorrupt
		}
		n += amountLength
		w.Assets = append(w.Assets, transactionrecord.Asset{Id: id, Amount: amount})
	}
	return w, nil
}
