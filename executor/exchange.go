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

// admission checks for an exchange
//
// distinct principals, a decodable fee strategy, offer signatures from
// sender and intermediary, envelope signature from the recipient
func verifyExchange(tx *transactionrecord.AssetExchange) error {
	offer := &tx.Offer
	if nil == offer.Sender || nil == offer.Recipient {
		return fault.ErrInvalidItem
	}
	if offer.Sender.IsSameAs(offer.Recipient) {
		return fault.ErrIdenticalParticipants
	}
	if nil != offer.Intermediary {
		broker := offer.Intermediary.Wallet
		if nil == broker {
			return fault.ErrInvalidItem
		}
		if broker.IsSameAs(offer.Sender) || broker.IsSameAs(offer.Recipient) {
			return fault.ErrIdenticalParticipants
		}
	}

	if !offer.FeeStrategy.IsValid() {
		return fault.ErrInvalidFeeStrategy
	}
	if nil == offer.Intermediary && transactionrecord.FeeStrategyIntermediary == offer.FeeStrategy {
		return fault.ErrInvalidFeeStrategy
	}

	offerBytes, err := offer.PackOffer()
	if nil != err {
		return err
	}
	err = offer.Sender.CheckSignature(offerBytes, tx.SenderSignature)
	if nil != err {
		return err
	}
	if nil != offer.Intermediary {
		err = offer.Intermediary.Wallet.CheckSignature(offerBytes, tx.IntermediarySignature)
		if nil != err {
			return err
		}
	}

	_, err = tx.Pack(offer.Recipient)
	return err
}

// exchange execution
//
// the fee strategy selects the payer(s) for the flat fee, the
// commission and every royalty; the principal swap itself is fixed:
// sender gives SenderValue coins and SenderAssets, recipient gives
// RecipientAssets
func (ex *Executor) executeExchange(trx storage.Transaction, tx *transactionrecord.AssetExchange) (status.TxStatus, error) {
	offer := &tx.Offer
	strategy := offer.FeeStrategy

	sender, err := wallet.FetchOrCreate(trx, offer.Sender)
	if nil != err {
		return status.Fail, err
	}
	recipient, err := wallet.FetchOrCreate(trx, offer.Recipient)
	if nil != err {
		return status.Fail, err
	}
	platform, err := wallet.FetchOrCreate(trx, ex.platform)
	if nil != err {
		return status.Fail, err
	}
	participants := &payment.Participants{
		Recipient: recipient,
		Sender:    sender,
	}
	if nil != offer.Intermediary {
		participants.Intermediary, err = wallet.FetchOrCreate(trx, offer.Intermediary.Wallet)
		if nil != err {
			return status.Fail, err
		}
	}

	fee := fees.ForExchange(trx, offer.SenderAssets, offer.RecipientAssets)

	if nil != payment.MoveCoins(trx, strategy, participants, platform, fee.TransactionFee) {
		return status.Fail, nil
	}
	ex.log.Debugf("exchange: fee %d paid by strategy %s", fee.TransactionFee, strategy)

	trx.Checkpoint()

	if nil != offer.Intermediary {
		if nil != payment.PayCommission(trx, strategy, participants, offer.Intermediary.Commission) {
			ex.log.Debugf("exchange: commission unpayable by strategy %s", strategy)
			trx.Rollback()
			return status.Fail, nil
		}
	}

	if !sender.IsSufficient(offer.SenderValue) ||
		!sender.IsAssetsInWallet(offer.SenderAssets) ||
		!recipient.IsAssetsInWallet(offer.RecipientAssets) {
		ex.log.Debugf("exchange: insufficient principal for swap")
		trx.Rollback()
		return status.Fail, nil
	}

	if nil != payment.Pay(trx, sender, recipient, offer.SenderValue) ||
		nil != payment.TransferAssets(trx, sender, recipient, offer.SenderAssets) ||
		nil != payment.TransferAssets(trx, recipient, sender, offer.RecipientAssets) {
		trx.Rollback()
		return status.Fail, nil
	}

	// royalty fan-out is all or nothing
	for _, royalty := range fee.AssetFees {
		creator, err := wallet.FetchOrCreate(trx, royalty.Creator)
		if nil != err {
			return status.Fail, err
		}
		if nil != payment.MoveCoins(trx, strategy, participants, creator, royalty.Fee) {
			ex.log.Debugf("exchange: royalty %d unpayable to %s", royalty.Fee, royalty.Creator)
			trx.Rollback()
			return status.Fail, nil
		}
	}

	return status.Success, nil
}
