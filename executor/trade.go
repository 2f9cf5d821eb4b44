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

// admission checks for a trade
//
// the seller and the intermediary, when present, must each have signed
// the canonical offer bytes; the buyer signs the whole message
func verifyTrade(tx *transactionrecord.AssetTrade) error {
	offer := &tx.Offer
	if nil == offer.Buyer || nil == offer.Seller {
		return fault.ErrInvalidItem
	}
	if offer.Buyer.IsSameAs(offer.Seller) {
		return fault.ErrIdenticalParticipants
	}
	if nil != offer.Intermediary {
		broker := offer.Intermediary.Wallet
		if nil == broker {
			return fault.ErrInvalidItem
		}
		if broker.IsSameAs(offer.Buyer) || broker.IsSameAs(offer.Seller) {
			return fault.ErrIdenticalParticipants
		}
	}

	offerBytes, err := offer.PackOffer()
	if nil != err {
		return err
	}
	err = offer.Seller.CheckSignature(offerBytes, tx.SellerSignature)
	if nil != err {
		return err
	}
	if nil != offer.Intermediary {
		err = offer.Intermediary.Wallet.CheckSignature(offerBytes, tx.IntermediarySignature)
		if nil != err {
			return err
		}
	}

	_, err = tx.Pack(offer.Buyer)
	return err
}

// trade execution
//
// the seller bears the fee, the commission and the royalties; the
// buyer pays the offer price and receives the assets
func (ex *Executor) executeTrade(trx storage.Transaction, tx *transactionrecord.AssetTrade) (status.TxStatus, error) {
	offer := &tx.Offer

	buyer, err := wallet.FetchOrCreate(trx, offer.Buyer)
	if nil != err {
		return status.Fail, err
	}
	seller, err := wallet.FetchOrCreate(trx, offer.Seller)
	if nil != err {
		return status.Fail, err
	}
	platform, err := wallet.FetchOrCreate(trx, ex.platform)
	if nil != err {
		return status.Fail, err
	}
	var intermediary *wallet.Wallet
	if nil != offer.Intermediary {
		intermediary, err = wallet.FetchOrCreate(trx, offer.Intermediary.Wallet)
		if nil != err {
			return status.Fail, err
		}
	}

	fee := fees.ForTrade(trx, offer.Assets)

	if nil != payment.Pay(trx, seller, platform, fee.TransactionFee) {
		return status.Fail, nil
	}
	ex.log.Debugf("trade: fee %d paid by %s", fee.TransactionFee, offer.Seller)

	trx.Checkpoint()

	if nil != offer.Intermediary {
		if nil != payment.Pay(trx, seller, intermediary, offer.Intermediary.Commission) {
			ex.log.Debugf("trade: commission unpayable by %s", offer.Seller)
			trx.Rollback()
			return status.Fail, nil
		}
	}

	assets := make([]transactionrecord.Asset, len(offer.Assets))
	for i, item := range offer.Assets {
		assets[i] = item.ToAsset()
	}
	price := offer.TotalPrice()

	if !buyer.IsSufficient(price) || !seller.IsAssetsInWallet(assets) {
		ex.log.Debugf("trade: insufficient principal: price: %d", price)
		trx.Rollback()
		return status.Fail, nil
	}

	if nil != payment.Pay(trx, buyer, seller, price) ||
		nil != payment.TransferAssets(trx, seller, buyer, assets) {
		trx.Rollback()
		return status.Fail, nil
	}

	// royalty fan-out is all or nothing
	for _, royalty := range fee.AssetFees {
		creator, err := wallet.FetchOrCreate(trx, royalty.Creator)
		if nil != err {
			return status.Fail, err
		}
		if nil != payment.Pay(trx, seller, creator, royalty.Fee) {
			ex.log.Debugf("trade: royalty %d unpayable to %s", royalty.Fee, royalty.Creator)
			trx.Rollback()
			return status.Fail, nil
		}
	}

	return status.Success, nil
}
