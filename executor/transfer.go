// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fees"
	"github.com/bitmark-inc/marketd/payment"
	"github.com/bitmark-inc/marketd/status"
	"github.com/bitmark-inc/marketd/storage"
	"github.com/bitmark-inc/marketd/transactionrecord"
	"github.com/bitmark-inc/marketd/wallet"
)

// admission checks for a transfer: single signer, distinct endpoints
func verifyTransfer(tx *transactionrecord.AssetTransfer) error {
	if nil == tx.Sender || nil == tx.Recipient {
		return fault.ErrInvalidItem
	}
	if tx.Sender.IsSameAs(tx.Recipient) {
		return fault.ErrIdenticalParticipants
	}
	// sender signs the whole message
	_, err := tx.Pack(tx.Sender)
	return err
}

// transfer execution
//
// the fee leaves the sender before the checkpoint and is never
// refunded; amount and attached assets move only if the sender still
// covers them after the fee
func (ex *Executor) executeTransfer(trx storage.Transaction, tx *transactionrecord.AssetTransfer) (status.TxStatus, error) {

	sender, err := wallet.FetchOrCreate(trx, tx.Sender)
	if nil != err {
		return status.Fail, err
	}
	recipient, err := wallet.FetchOrCreate(trx, tx.Recipient)
	if nil != err {
		return status.Fail, err
	}
	platform, err := wallet.FetchOrCreate(trx, ex.platform)
	if nil != err {
		return status.Fail, err
	}

	fee := fees.ForTransfer(tx.Assets)

	if nil != payment.Pay(trx, sender, platform, fee.TransactionFee) {
		return status.Fail, nil
	}
	ex.log.Debugf("transfer: fee %d paid by %s", fee.TransactionFee, tx.Sender)

	trx.Checkpoint()

	if !sender.IsSufficient(tx.Amount) || !sender.IsAssetsInWallet(tx.Assets) {
		ex.log.Debugf("transfer: insufficient principal for %s", tx.Sender)
		trx.Rollback()
		return status.Fail, nil
	}

	if nil != payment.Pay(trx, sender, recipient, tx.Amount) ||
		nil != payment.TransferAssets(trx, sender, recipient, tx.Assets) {
		trx.Rollback()
		return status.Fail, nil
	}

	return status.Success, nil
}
