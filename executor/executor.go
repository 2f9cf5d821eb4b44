// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package executor - the per-kind transaction state machines
//
// each marketplace transaction kind passes through the same contract:
// Verify (admission, pure), Execute (the checkpointed state transition
// against a storage transaction) and Info (client-facing summary with
// the fee the execution will charge)
//
// the transaction kind set is closed, so dispatch is an exhaustive
// type switch on the decoded record
package executor

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fees"
	"github.com/bitmark-inc/marketd/merkle"
	"github.com/bitmark-inc/marketd/status"
	"github.com/bitmark-inc/marketd/storage"
	"github.com/bitmark-inc/marketd/transactionrecord"
)

// Executor - executes admitted transactions against the ledger
//
// the platform account is injected at construction so tests can run
// against any address; there is no hidden global platform wallet
type Executor struct {
	log      *logger.L
	platform *account.Account
}

// New - create an executor paying flat fees to the platform account
func New(platform *account.Account) (*Executor, error) {
	if nil == platform {
		return nil, fault.ErrInvalidItem
	}
	return &Executor{
		log:      logger.New("executor"),
		platform: platform,
	}, nil
}

// Summary - the client-facing description of a transaction
//
// TransactionFee and AssetFees must match what Execute will charge for
// the same offer against the same registered assets
type Summary struct {
	Name           string            `json:"name"`
	TxId           merkle.Digest     `json:"txId"`
	TransactionFee uint64            `json:"transactionFee"`
	AssetFees      []fees.RoyaltyFee `json:"assetFees,omitempty"`
	Memo           string            `json:"memo,omitempty"`
}

// Verify - the admission phase
//
// pure: no storage access, no mutation; a nil return admits the
// transaction, any error rejects it before it can enter a block
func (ex *Executor) Verify(tx transactionrecord.Transaction) error {
	switch tx := tx.(type) {
	case *transactionrecord.AssetTransfer:
		return verifyTransfer(tx)
	case *transactionrecord.AssetTrade:
		return verifyTrade(tx)
	case *transactionrecord.AssetExchange:
		return verifyExchange(tx)
	default:
		return fault.ErrNotTransactionPack
	}
}

// Execute - the execution phase
//
// runs the kind's state transition inside the supplied storage
// transaction and records the outcome exactly once; the returned error
// is reserved for fatal host conditions (corrupt records), every
// execution-domain failure becomes data: a Fail status
func (ex *Executor) Execute(trx storage.Transaction, tx transactionrecord.Transaction) (merkle.Digest, status.TxStatus, error) {
	packed, err := packEnvelope(tx)
	if nil != err {
		return merkle.Digest{}, status.Fail, err
	}
	txId := packed.MakeLink()

	var result status.TxStatus
	switch tx := tx.(type) {
	case *transactionrecord.AssetTransfer:
		result, err = ex.executeTransfer(trx, tx)
	case *transactionrecord.AssetTrade:
		result, err = ex.executeTrade(trx, tx)
	case *transactionrecord.AssetExchange:
		result, err = ex.executeExchange(trx, tx)
	default:
		return txId, status.Fail, fault.ErrNotTransactionPack
	}
	if nil != err {
		return txId, status.Fail, err
	}

	status.Set(trx, txId, result)
	ex.log.Infof("executed: %v  status: %s", txId, result)
	return txId, result, nil
}

// Info - describe a transaction without executing it
//
// the fee breakdown is computed against currently committed asset
// metadata, exactly as Execute will compute it
func (ex *Executor) Info(tx transactionrecord.Transaction) (*Summary, error) {
	packed, err := packEnvelope(tx)
	if nil != err {
		return nil, err
	}

	name, ok := transactionrecord.RecordName(tx)
	if !ok {
		return nil, fault.ErrNotTransactionPack
	}

	summary := &Summary{
		Name: name,
		TxId: packed.MakeLink(),
	}

	switch tx := tx.(type) {
	case *transactionrecord.AssetTransfer:
		fee := fees.ForTransfer(tx.Assets)
		summary.TransactionFee = fee.TransactionFee
		summary.Memo = tx.Memo
	case *transactionrecord.AssetTrade:
		fee := fees.ForTrade(nil, tx.Offer.Assets)
		summary.TransactionFee = fee.TransactionFee
		summary.AssetFees = fee.AssetFees
		summary.Memo = tx.Memo
	case *transactionrecord.AssetExchange:
		fee := fees.ForExchange(nil, tx.Offer.SenderAssets, tx.Offer.RecipientAssets)
		summary.TransactionFee = fee.TransactionFee
		summary.AssetFees = fee.AssetFees
		summary.Memo = tx.Memo
	}
	return summary, nil
}

// pack a transaction with its envelope signer, yielding the canonical
// bytes whose digest is the transaction id
func packEnvelope(tx transactionrecord.Transaction) (transactionrecord.Packed, error) {
	signer := envelopeSigner(tx)
	if nil == signer {
		return nil, fault.ErrInvalidItem
	}
	return tx.Pack(signer)
}

// the party whose signature authenticates the whole message
func envelopeSigner(tx transactionrecord.Transaction) *account.Account {
	switch tx := tx.(type) {
	case *transactionrecord.AssetTransfer:
		return tx.Sender
	case *transactionrecord.AssetTrade:
		return tx.Offer.Buyer
	case *transactionrecord.AssetExchange:
		return tx.Offer.Recipient
	default:
		return nil
	}
}
