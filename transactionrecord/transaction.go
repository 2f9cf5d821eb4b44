// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"encoding/hex"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/merkle"
	"github.com/bitmark-inc/marketd/util"
)

// TagType - type code for transactions
type TagType uint64

// enumerate the possible transaction record types
// this is encoded a Varint64 at start of "Packed"
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// valid record types
	AssetTransferTag                 = TagType(iota) // move coins and assets to another wallet
	AssetTradeTag                    = TagType(iota) // sell assets for coins
	AssetTradeWithIntermediaryTag    = TagType(iota) // sell assets for coins via a broker
	AssetExchangeTag                 = TagType(iota) // swap asset bundles and coins
	AssetExchangeWithIntermediaryTag = TagType(iota) // swap asset bundles and coins via a broker

	// this item must be last
	InvalidTag = TagType(iota)
)

// Packed - packed records are just a byte slice
type Packed []byte

// Transaction - generic transaction interface
type Transaction interface {
	Pack(account *account.Account) (Packed, error)
}

// byte sizes for various fields
const (
	maxMemoLength      = 1024
	maxSignatureLength = 1024
	maxAssetsPerOffer  = 256
)

// FeeStrategy - selects which principal(s) pay the platform fee and
// the intermediary commission
type FeeStrategy byte

// the closed set of strategies; any other discriminant is invalid
const (
	FeeStrategyRecipient          FeeStrategy = 1
	FeeStrategySender             FeeStrategy = 2
	FeeStrategyRecipientAndSender FeeStrategy = 3
	FeeStrategyIntermediary       FeeStrategy = 4
)

// IsValid - check for a known discriminant
func (strategy FeeStrategy) IsValid() bool {
	switch strategy {
	case FeeStrategyRecipient, FeeStrategySender,
		FeeStrategyRecipientAndSender, FeeStrategyIntermediary:
		return true
	default:
		return false
	}
}

// String - the strategy as text
func (strategy FeeStrategy) String() string {
	switch strategy {
	case FeeStrategyRecipient:
		return "Recipient"
	case FeeStrategySender:
		return "Sender"
	case FeeStrategyRecipientAndSender:
		return "RecipientAndSender"
	case FeeStrategyIntermediary:
		return "Intermediary"
	default:
		return "*Unknown*"
	}
}

// Asset - an asset identity with a quantity, as held in a wallet or
// named by an offer
type Asset struct {
	Id     AssetIdentifier `json:"id"`
	Amount uint64          `json:"amount"`
}

// TradeAsset - an asset quantity offered for sale at a unit price
type TradeAsset struct {
	Id     AssetIdentifier `json:"id"`
	Amount uint64          `json:"amount"`
	Price  uint64          `json:"price"` // per unit, in coins
}

// ToAsset - strip the price, for application to wallet holdings
func (trade TradeAsset) ToAsset() Asset {
	return Asset{
		Id:     trade.Id,
		Amount: trade.Amount,
	}
}

// TotalPrice - coins payable for the whole quantity
func (trade TradeAsset) TotalPrice() uint64 {
	return trade.Amount * trade.Price
}

// DistinctAssetCount - number of distinct asset identifiers in a list
func DistinctAssetCount(assets []Asset) uint64 {
	seen := make(map[AssetIdentifier]struct{}, len(assets))
	for _, a := range assets {
		seen[a.Id] = struct{}{}
	}
	return uint64(len(seen))
}

// Intermediary - a third party entitled to a commission for
// facilitating a multi-party transaction
type Intermediary struct {
	Wallet     *account.Account `json:"wallet"`     // base58
	Commission uint64           `json:"commission"` // coins
}

// AssetTransfer - move coins and assets from sender to recipient
//
// single signer: the sender signs the whole message
type AssetTransfer struct {
	Sender    *account.Account  `json:"sender"`    // base58
	Recipient *account.Account  `json:"recipient"` // base58
	Amount    uint64            `json:"amount"`    // coins
	Assets    []Asset           `json:"assets"`    // attached holdings
	Seed      uint64            `json:"seed"`      // replay distinguisher
	Memo      string            `json:"memo"`      // utf-8
	Signature account.Signature `json:"signature"` // hex: sender over whole message
}

// TradeOffer - the unsigned economic terms of a trade
//
// Intermediary is nil for the plain trade kind and required for the
// with-intermediary kind; it is part of the canonical offer bytes so
// every offer signer covers the commission
type TradeOffer struct {
	Intermediary *Intermediary    `json:"intermediary,omitempty"`
	Buyer        *account.Account `json:"buyer"`  // base58
	Seller       *account.Account `json:"seller"` // base58
	Assets       []TradeAsset     `json:"assets"`
}

// TotalPrice - coins payable by the buyer for the whole offer
func (offer *TradeOffer) TotalPrice() uint64 {
	total := uint64(0)
	for _, item := range offer.Assets {
		total += item.TotalPrice()
	}
	return total
}

// AssetTrade - sell assets for coins
//
// the seller (and the intermediary, if present) sign the canonical
// offer bytes; the buyer's signature authenticates the whole message
type AssetTrade struct {
	Offer                 TradeOffer        `json:"offer"`
	Seed                  uint64            `json:"seed"`
	SellerSignature       account.Signature `json:"sellerSignature"`                 // hex: over offer
	IntermediarySignature account.Signature `json:"intermediarySignature,omitempty"` // hex: over offer
	Memo                  string            `json:"memo"`
	Signature             account.Signature `json:"signature"` // hex: buyer over whole message
}

// ExchangeOffer - the unsigned economic terms of an exchange
//
// sender gives SenderValue coins and SenderAssets, receives
// RecipientAssets; FeeStrategy selects who pays fee and commission
type ExchangeOffer struct {
	Intermediary    *Intermediary    `json:"intermediary,omitempty"`
	Sender          *account.Account `json:"sender"` // base58
	SenderAssets    []Asset          `json:"senderAssets"`
	SenderValue     uint64           `json:"senderValue"` // coins
	Recipient       *account.Account `json:"recipient"`   // base58
	RecipientAssets []Asset          `json:"recipientAssets"`
	FeeStrategy     FeeStrategy      `json:"feeStrategy"`
}

// AssetExchange - swap asset bundles and coins
//
// the sender (and the intermediary, if present) sign the canonical
// offer bytes; the recipient's signature authenticates the whole message
type AssetExchange struct {
	Offer                 ExchangeOffer     `json:"offer"`
	Seed                  uint64            `json:"seed"`
	SenderSignature       account.Signature `json:"senderSignature"`                 // hex: over offer
	IntermediarySignature account.Signature `json:"intermediarySignature,omitempty"` // hex: over offer
	Memo                  string            `json:"memo"`
	Signature             account.Signature `json:"signature"` // hex: recipient over whole message
}

// Type - returns the record type code
func (record Packed) Type() TagType {
	recordType, n := util.FromVarint64(record)
	if 0 == n {
		return NullTag
	}
	return TagType(recordType)
}

// RecordName - returns the name of a transaction record as a string
func RecordName(record interface{}) (string, bool) {
	switch tx := record.(type) {
	case *AssetTransfer, AssetTransfer:
		return "AssetTransfer", true

	case *AssetTrade:
		if nil == tx.Offer.Intermediary {
			return "AssetTrade", true
		}
		return "AssetTradeWithIntermediary", true

	case *AssetExchange:
		if nil == tx.Offer.Intermediary {
			return "AssetExchange", true
		}
		return "AssetExchangeWithIntermediary", true

	default:
		return "*unknown*", false
	}
}

// MakeLink - create the transaction id for a packed record
func (record Packed) MakeLink() merkle.Digest {
	return merkle.NewDigest(record)
}

// MarshalText - convert a packed to its hex JSON form
func (record Packed) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(record))
	b := make([]byte, size)
	hex.Encode(b, record)
	return b, nil
}

// UnmarshalText - convert a packed from its hex JSON form
func (record *Packed) UnmarshalText(s []byte) error {
	size := hex.DecodedLen(len(s))
	*record = make([]byte, size)
	_, err := hex.Decode(*record, s)
	return err
}
