// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"unicode/utf8"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/util"
)

// Pack - pack an AssetTransfer
//
// Pack Varint64(tag) followed by fields in order as struct above with
// signature last
//
// NOTE: returns the "unsigned" message on signature failure - for
//       debugging/testing
func (transfer *AssetTransfer) Pack(address *account.Account) (Packed, error) {
	if len(transfer.Signature) > maxSignatureLength {
		return nil, fault.ErrSignatureTooLong
	}

	if nil == transfer.Sender || nil == transfer.Recipient || nil == address {
		return nil, fault.ErrInvalidItem
	}

	if utf8.RuneCountInString(transfer.Memo) > maxMemoLength {
		return nil, fault.ErrMemoTooLong
	}

	if len(transfer.Assets) > maxAssetsPerOffer {
		return nil, fault.ErrInvalidCount
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(AssetTransferTag))
	message = appendAccount(message, transfer.Sender)
	message = appendAccount(message, transfer.Recipient)
	message = appendUint64(message, transfer.Amount)
	message = appendAssets(message, transfer.Assets)
	message = appendUint64(message, transfer.Seed)
	message = appendString(message, transfer.Memo)

	// signature
	err := address.CheckSignature(message, transfer.Signature)
	if nil != err {
		return message, err
	}
	// signature last
	return appendBytes(message, transfer.Signature), nil
}

// PackOffer - canonical offer bytes for a trade
//
// these are the bytes the seller and the intermediary sign
func (offer *TradeOffer) PackOffer() (Packed, error) {
	if nil == offer.Buyer || nil == offer.Seller {
		return nil, fault.ErrInvalidItem
	}
	if len(offer.Assets) > maxAssetsPerOffer {
		return nil, fault.ErrInvalidCount
	}

	tag := AssetTradeTag
	if nil != offer.Intermediary {
		if nil == offer.Intermediary.Wallet {
			return nil, fault.ErrInvalidItem
		}
		tag = AssetTradeWithIntermediaryTag
	}

	message := util.ToVarint64(uint64(tag))
	if nil != offer.Intermediary {
		message = appendAccount(message, offer.Intermediary.Wallet)
		message = appendUint64(message, offer.Intermediary.Commission)
	}
	message = appendAccount(message, offer.Buyer)
	message = appendAccount(message, offer.Seller)
	message = appendTradeAssets(message, offer.Assets)
	return message, nil
}

// Pack - pack an AssetTrade
//
// layout: offer bytes, seed, seller signature, intermediary signature
// (with-intermediary kind only), memo, buyer signature last covering
// all preceding bytes
//
// NOTE: returns the "unsigned" message on signature failure - for
//       debugging/testing
func (trade *AssetTrade) Pack(address *account.Account) (Packed, error) {
	if len(trade.Signature) > maxSignatureLength ||
		len(trade.SellerSignature) > maxSignatureLength ||
		len(trade.IntermediarySignature) > maxSignatureLength {
		return nil, fault.ErrSignatureTooLong
	}

	if nil == address {
		return nil, fault.ErrInvalidItem
	}

	if utf8.RuneCountInString(trade.Memo) > maxMemoLength {
		return nil, fault.ErrMemoTooLong
	}

	message, err := trade.Offer.PackOffer()
	if nil != err {
		return nil, err
	}

	message = appendUint64(message, trade.Seed)
	message = appendBytes(message, trade.SellerSignature)
	if nil != trade.Offer.Intermediary {
		message = appendBytes(message, trade.IntermediarySignature)
	}
	message = appendString(message, trade.Memo)

	// signature
	err = address.CheckSignature(message, trade.Signature)
	if nil != err {
		return message, err
	}
	// signature last
	return appendBytes(message, trade.Signature), nil
}

// PackOffer - canonical offer bytes for an exchange
//
// these are the bytes the sender and the intermediary sign
func (offer *ExchangeOffer) PackOffer() (Packed, error) {
	if nil == offer.Sender || nil == offer.Recipient {
		return nil, fault.ErrInvalidItem
	}
	if len(offer.SenderAssets) > maxAssetsPerOffer ||
		len(offer.RecipientAssets) > maxAssetsPerOffer {
		return nil, fault.ErrInvalidCount
	}

	tag := AssetExchangeTag
	if nil != offer.Intermediary {
		if nil == offer.Intermediary.Wallet {
			return nil, fault.ErrInvalidItem
		}
		tag = AssetExchangeWithIntermediaryTag
	}

	message := util.ToVarint64(uint64(tag))
	if nil != offer.Intermediary {
		message = appendAccount(message, offer.Intermediary.Wallet)
		message = appendUint64(message, offer.Intermediary.Commission)
	}
	message = appendAccount(message, offer.Sender)
	message = appendAssets(message, offer.SenderAssets)
	message = appendUint64(message, offer.SenderValue)
	message = appendAccount(message, offer.Recipient)
	message = appendAssets(message, offer.RecipientAssets)
	message = append(message, byte(offer.FeeStrategy))
	return message, nil
}

// Pack - pack an AssetExchange
//
// layout: offer bytes, seed, sender signature, intermediary signature
// (with-intermediary kind only), memo, recipient signature last
// covering all preceding bytes
//
// NOTE: returns the "unsigned" message on signature failure - for
//       debugging/testing
func (exchange *AssetExchange) Pack(address *account.Account) (Packed, error) {
	if len(exchange.Signature) > maxSignatureLength ||
		len(exchange.SenderSignature) > maxSignatureLength ||
		len(exchange.IntermediarySignature) > maxSignatureLength {
		return nil, fault.ErrSignatureTooLong
	}

	if nil == address {
		return nil, fault.ErrInvalidItem
	}

	if utf8.RuneCountInString(exchange.Memo) > maxMemoLength {
		return nil, fault.ErrMemoTooLong
	}

	message, err := exchange.Offer.PackOffer()
	if nil != err {
		return nil, err
	}

	message = appendUint64(message, exchange.Seed)
	message = appendBytes(message, exchange.SenderSignature)
	if nil != exchange.Offer.Intermediary {
		message = appendBytes(message, exchange.IntermediarySignature)
	}
	message = appendString(message, exchange.Memo)

	// signature
	err = address.CheckSignature(message, exchange.Signature)
	if nil != err {
		return message, err
	}
	// signature last
	return appendBytes(message, exchange.Signature), nil
}

// internal helpers to append key/value pairs to the buffer

// append a single field to a buffer
//
// the field is prefixed by Varint64(length)
func appendString(buffer Packed, s string) Packed {
	l := util.ToVarint64(uint64(len(s)))
	buffer = append(buffer, l...)
	return append(buffer, s...)
}

// append an account to a buffer
//
// the field is prefixed by Varint64(length)
func appendAccount(buffer Packed, address *account.Account) Packed {
	data := address.Bytes()
	l := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, l...)
	return append(buffer, data...)
}

// append a bytes to a buffer
//
// the field is prefixed by Varint64(length)
func appendBytes(buffer Packed, data []byte) Packed {
	l := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, l...)
	buffer = append(buffer, data...)
	return buffer
}

// append a Varint64 to buffer
func appendUint64(buffer Packed, value uint64) Packed {
	valueBytes := util.ToVarint64(value)
	buffer = append(buffer, valueBytes...)
	return buffer
}

// append an asset list to a buffer
//
// Varint64(count) then per item: identifier bytes, Varint64(amount)
func appendAssets(buffer Packed, assets []Asset) Packed {
	buffer = appendUint64(buffer, uint64(len(assets)))
	for _, item := range assets {
		buffer = append(buffer, item.Id[:]...)
		buffer = appendUint64(buffer, item.Amount)
	}
	return buffer
}

// append a trade asset list to a buffer
//
// Varint64(count) then per item: identifier bytes, Varint64(amount),
// Varint64(price)
func appendTradeAssets(buffer Packed, assets []TradeAsset) Packed {
	buffer = appendUint64(buffer, uint64(len(assets)))
	for _, item := range assets {
		buffer = append(buffer, item.Id[:]...)
		buffer = appendUint64(buffer, item.Amount)
		buffer = appendUint64(buffer, item.Price)
	}
	return buffer
}
