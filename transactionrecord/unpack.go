// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/util"
)

// Unpack - turn a byte slice into a record
//
// must cast result to correct type
//
// e.g.
//   transfer, ok := result.(*transactionrecord.AssetTransfer)
// or:
//   switch tx := result.(type) {
//   case *transactionrecord.AssetTransfer:
func (record Packed) Unpack(testnet bool) (t Transaction, n int, e error) {

	defer func() {
		if r := recover(); nil != r {
			e = fault.ErrNotTransactionPack
		}
	}()

	recordType, n := util.ClippedVarint64(record, 1, 8192)
	if 0 == n {
		return nil, 0, fault.ErrNotTransactionPack
	}

	switch TagType(recordType) {

	case AssetTransferTag:

		// sender public key
		sender, senderLength, err := unpackAccount(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += senderLength

		// recipient public key
		recipient, recipientLength, err := unpackAccount(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += recipientLength

		// amount
		amount, amountLength := util.FromVarint64(record[n:])
		if 0 == amountLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += amountLength

		// attached assets
		assets, assetsLength, err := unpackAssets(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += assetsLength

		// seed
		seed, seedLength := util.FromVarint64(record[n:])
		if 0 == seedLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += seedLength

		// memo
		memo, memoLength, err := unpackString(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += memoLength

		// signature is remainder of record
		signature, signatureLength, err := unpackSignature(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += signatureLength

		r := &AssetTransfer{
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
			Assets:    assets,
			Seed:      seed,
			Memo:      memo,
			Signature: signature,
		}
		return r, n, nil

	case AssetTradeTag, AssetTradeWithIntermediaryTag:

		var intermediary *Intermediary
		if AssetTradeWithIntermediaryTag == TagType(recordType) {
			i, intermediaryLength, err := unpackIntermediary(record[n:], testnet)
			if nil != err {
				return nil, 0, err
			}
			intermediary = i
			n += intermediaryLength
		}

		// buyer public key
		buyer, buyerLength, err := unpackAccount(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += buyerLength

		// seller public key
		seller, sellerLength, err := unpackAccount(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += sellerLength

		// offered assets with prices
		assets, assetsLength, err := unpackTradeAssets(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += assetsLength

		// seed
		seed, seedLength := util.FromVarint64(record[n:])
		if 0 == seedLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += seedLength

		// seller signature over offer bytes
		sellerSignature, sellerSignatureLength, err := unpackSignature(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += sellerSignatureLength

		// intermediary signature over offer bytes
		var intermediarySignature account.Signature
		if nil != intermediary {
			s, intermediarySignatureLength, err := unpackSignature(record[n:])
			if nil != err {
				return nil, 0, err
			}
			intermediarySignature = s
			n += intermediarySignatureLength
		}

		// memo
		memo, memoLength, err := unpackString(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += memoLength

		// buyer signature is remainder of record
		signature, signatureLength, err := unpackSignature(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += signatureLength

		r := &AssetTrade{
			Offer: TradeOffer{
				Intermediary: intermediary,
				Buyer:        buyer,
				Seller:       seller,
				Assets:       assets,
			},
			Seed:                  seed,
			SellerSignature:       sellerSignature,
			IntermediarySignature: intermediarySignature,
			Memo:                  memo,
			Signature:             signature,
		}
		return r, n, nil

	case AssetExchangeTag, AssetExchangeWithIntermediaryTag:

		var intermediary *Intermediary
		if AssetExchangeWithIntermediaryTag == TagType(recordType) {
			i, intermediaryLength, err := unpackIntermediary(record[n:], testnet)
			if nil != err {
				return nil, 0, err
			}
			intermediary = i
			n += intermediaryLength
		}

		// sender public key
		sender, senderLength, err := unpackAccount(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += senderLength

		// sender asset bundle
		senderAssets, senderAssetsLength, err := unpackAssets(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += senderAssetsLength

		// sender coin amount
		senderValue, senderValueLength := util.FromVarint64(record[n:])
		if 0 == senderValueLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += senderValueLength

		// recipient public key
		recipient, recipientLength, err := unpackAccount(record[n:], testnet)
		if nil != err {
			return nil, 0, err
		}
		n += recipientLength

		// recipient asset bundle
		recipientAssets, recipientAssetsLength, err := unpackAssets(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += recipientAssetsLength

		// fee strategy discriminant
		// Note: an unknown discriminant still unpacks; admission rejects it
		if n >= len(record) {
			return nil, 0, fault.ErrNotTransactionPack
		}
		feeStrategy := FeeStrategy(record[n])
		n += 1

		// seed
		seed, seedLength := util.FromVarint64(record[n:])
		if 0 == seedLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += seedLength

		// sender signature over offer bytes
		senderSignature, senderSignatureLength, err := unpackSignature(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += senderSignatureLength

		// intermediary signature over offer bytes
		var intermediarySignature account.Signature
		if nil != intermediary {
			s, intermediarySignatureLength, err := unpackSignature(record[n:])
			if nil != err {
				return nil, 0, err
			}
			intermediarySignature = s
			n += intermediarySignatureLength
		}

		// memo
		memo, memoLength, err := unpackString(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += memoLength

		// recipient signature is remainder of record
		signature, signatureLength, err := unpackSignature(record[n:])
		if nil != err {
			return nil, 0, err
		}
		n += signatureLength

		r := &AssetExchange{
			Offer: ExchangeOffer{
				Intermediary:    intermediary,
				Sender:          sender,
				SenderAssets:    senderAssets,
				SenderValue:     senderValue,
				Recipient:       recipient,
				RecipientAssets: recipientAssets,
				FeeStrategy:     feeStrategy,
			},
			Seed:                  seed,
			SenderSignature:       senderSignature,
			IntermediarySignature: intermediarySignature,
			Memo:                  memo,
			Signature:             signature,
		}
		return r, n, nil

	default:
	}
	return nil, 0, fault.ErrNotTransactionPack
}

// unpack a length prefixed account and check its network
func unpackAccount(record Packed, testnet bool) (*account.Account, int, error) {
	addressLength, addressOffset := util.ClippedVarint64(record, 1, 8192)
	if 0 == addressOffset {
		return nil, 0, fault.ErrNotTransactionPack
	}
	n := addressOffset
	address, err := account.AccountFromBytes(record[n : n+addressLength])
	if nil != err {
		return nil, 0, err
	}
	if address.IsTesting() != testnet {
		return nil, 0, fault.ErrWrongNetworkForPublicKey
	}
	n += addressLength
	return address, n, nil
}

// unpack a length prefixed signature
func unpackSignature(record Packed) (account.Signature, int, error) {
	signatureLength, signatureOffset := util.ClippedVarint64(record, 1, maxSignatureLength+1)
	if 0 == signatureOffset {
		return nil, 0, fault.ErrNotTransactionPack
	}
	signature := make(account.Signature, signatureLength)
	n := signatureOffset
	copy(signature, record[n:n+signatureLength])
	n += signatureLength
	return signature, n, nil
}

// unpack a length prefixed string (can be zero length)
func unpackString(record Packed) (string, int, error) {
	stringLength, stringOffset := util.ClippedVarint64(record, 0, 8192)
	if 0 == stringOffset {
		return "", 0, fault.ErrNotTransactionPack
	}
	n := stringOffset
	s := string(record[n : n+stringLength])
	n += stringLength
	return s, n, nil
}

// unpack a counted asset list
func unpackAssets(record Packed) ([]Asset, int, error) {
	count, countLength := util.FromVarint64(record)
	if 0 == countLength || count > maxAssetsPerOffer {
		return nil, 0, fault.ErrInvalidCount
	}
	n := countLength
	assets := make([]Asset, 0, count)
	for i := uint64(0); i < count; i += 1 {
		var id AssetIdentifier
		err := AssetIdentifierFromBytes(&id, record[n:n+AssetIdentifierLength])
		if nil != err {
			return nil, 0, err
		}
		n += AssetIdentifierLength
		amount, amountLength := util.FromVarint64(record[n:])
		if 0 == amountLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += amountLength
		assets = append(assets, Asset{Id: id, Amount: amount})
	}
	return assets, n, nil
}

// unpack a counted trade asset list
func unpackTradeAssets(record Packed) ([]TradeAsset, int, error) {
	count, countLength := util.FromVarint64(record)
	if 0 == countLength || count > maxAssetsPerOffer {
		return nil, 0, fault.ErrInvalidCount
	}
	n := countLength
	assets := make([]TradeAsset, 0, count)
	for i := uint64(0); i < count; i += 1 {
		var id AssetIdentifier
		err := AssetIdentifierFromBytes(&id, record[n:n+AssetIdentifierLength])
		if nil != err {
			return nil, 0, err
		}
		n += AssetIdentifierLength
		amount, amountLength := util.FromVarint64(record[n:])
		if 0 == amountLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += amountLength
		price, priceLength := util.FromVarint64(record[n:])
		if 0 == priceLength {
			return nil, 0, fault.ErrNotTransactionPack
		}
		n += priceLength
		assets = append(assets, TradeAsset{Id: id, Amount: amount, Price: price})
	}
	return assets, n, nil
}

// unpack an intermediary: account then commission
func unpackIntermediary(record Packed, testnet bool) (*Intermediary, int, error) {
	wallet, walletLength, err := unpackAccount(record, testnet)
	if nil != err {
		return nil, 0, err
	}
	n := walletLength
	commission, commissionLength := util.FromVarint64(record[n:])
	if 0 == commissionLength {
		return nil, 0, fault.ErrNotTransactionPack
	}
	n += commissionLength
	return &Intermediary{
		Wallet:     wallet,
		Commission: commission,
	}, n, nil
}
