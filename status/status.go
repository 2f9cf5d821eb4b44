// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package status - the append-only transaction outcome ledger
//
// one entry per executed transaction, keyed by the transaction digest;
// entries are never deleted once a block has committed
package status

import (
	"github.com/bitmark-inc/marketd/merkle"
	"github.com/bitmark-inc/marketd/storage"
)

// TxStatus - the recorded outcome of one executed transaction
type TxStatus byte

// possible outcomes
const (
	Fail    TxStatus = 0
	Success TxStatus = 1
)

// String - the outcome as text
func (s TxStatus) String() string {
	switch s {
	case Success:
		return "Success"
	case Fail:
		return "Fail"
	default:
		return "*Unknown*"
	}
}

// Set - record the outcome of a transaction
//
// upsert by key; recorded exactly once per execution
func Set(trx storage.Transaction, txId merkle.Digest, s TxStatus) {
	trx.Put(storage.Pool.TransactionStatuses, txId[:], []byte{byte(s)})
}

// Get - query the outcome of a transaction
//
// second return is false if the transaction was never executed
func Get(trx storage.Transaction, txId merkle.Digest) (TxStatus, bool) {
	var packed []byte
	if nil == trx {
		packed = storage.Pool.TransactionStatuses.Get(txId[:])
	} else {
		packed = trx.Get(storage.Pool.TransactionStatuses, txId[:])
	}
	if 1 != len(packed) {
		return Fail, false
	}
	return TxStatus(packed[0]), true
}
