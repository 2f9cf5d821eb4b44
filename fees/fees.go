// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fees - the fee calculator
//
// pure computation over an offer's asset content and the registered
// asset metadata; callable identically for client fee preview and
// during execution, so it must never write storage and must produce
// the same breakdown for the same offer every time
package fees

import (
	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/storage"
	"github.com/bitmark-inc/marketd/transactionrecord"
)

// default fee schedule, overridable from configuration
const (
	DefaultTransferBaseFee = 1000
	DefaultPerAssetFee     = 3
	DefaultTradeBaseFee    = 1000
	DefaultExchangeBaseFee = 1000
)

// the active schedule
var schedule = struct {
	transferBase uint64
	perAsset     uint64
	tradeBase    uint64
	exchangeBase uint64
}{
	transferBase: DefaultTransferBaseFee,
	perAsset:     DefaultPerAssetFee,
	tradeBase:    DefaultTradeBaseFee,
	exchangeBase: DefaultExchangeBaseFee,
}

// Initialise - install the configured fee schedule
//
// a zero value keeps the default for that entry
func Initialise(transferBase uint64, perAsset uint64, tradeBase uint64, exchangeBase uint64) {
	if 0 != transferBase {
		schedule.transferBase = transferBase
	}
	if 0 != perAsset {
		schedule.perAsset = perAsset
	}
	if 0 != tradeBase {
		schedule.tradeBase = tradeBase
	}
	if 0 != exchangeBase {
		schedule.exchangeBase = exchangeBase
	}
}

// RoyaltyFee - royalty owed to one asset creator
type RoyaltyFee struct {
	Creator *account.Account `json:"creator"` // base58
	Fee     uint64           `json:"fee"`     // coins
}

// TxFees - the fee breakdown for one offer
//
// AssetFees is ordered by first appearance of each creator in the
// offer so that royalty payout order is consensus-deterministic
type TxFees struct {
	TransactionFee uint64       `json:"transactionFee"`
	AssetFees      []RoyaltyFee `json:"assetFees"`
}

// RoyaltyTotal - sum of all creator royalties
func (f TxFees) RoyaltyTotal() uint64 {
	total := uint64(0)
	for _, item := range f.AssetFees {
		total += item.Fee
	}
	return total
}

// ForTransfer - flat fee plus a per-asset surcharge
//
// surcharge counts distinct asset identifiers; a transfer pays no
// royalties
func ForTransfer(assets []transactionrecord.Asset) TxFees {
	return TxFees{
		TransactionFee: schedule.transferBase +
			schedule.perAsset*transactionrecord.DistinctAssetCount(assets),
	}
}

// ForTrade - flat trade fee plus per-creator royalties
func ForTrade(trx storage.Transaction, tradeAssets []transactionrecord.TradeAsset) TxFees {
	assets := make([]transactionrecord.Asset, len(tradeAssets))
	for i, item := range tradeAssets {
		assets[i] = item.ToAsset()
	}
	return TxFees{
		TransactionFee: schedule.tradeBase,
		AssetFees:      royaltyFees(trx, assets),
	}
}

// ForExchange - flat exchange fee plus per-creator royalties
//
// both sides' asset bundles are concatenated before summation
func ForExchange(trx storage.Transaction, senderAssets []transactionrecord.Asset, recipientAssets []transactionrecord.Asset) TxFees {
	assets := make([]transactionrecord.Asset, 0, len(senderAssets)+len(recipientAssets))
	assets = append(assets, senderAssets...)
	assets = append(assets, recipientAssets...)
	return TxFees{
		TransactionFee: schedule.exchangeBase,
		AssetFees:      royaltyFees(trx, assets),
	}
}

// royalty owed per creator: royalty rate × units, summed over every
// asset entry, grouped by creator in first-seen order
//
// an unregistered asset carries no metadata and therefore accrues no
// royalty
func royaltyFees(trx storage.Transaction, assets []transactionrecord.Asset) []RoyaltyFee {
	result := make([]RoyaltyFee, 0, len(assets))
	index := make(map[string]int, len(assets))

	for _, item := range assets {
		data, err := asset.Fetch(trx, item.Id)
		if nil != err {
			continue
		}
		fee := data.Royalty * item.Amount
		if 0 == fee {
			continue
		}
		key := string(data.Creator.Bytes())
		if i, ok := index[key]; ok {
			result[i].Fee += fee
		} else {
			index[key] = len(result)
			result = append(result, RoyaltyFee{
				Creator: data.Creator,
				Fee:     fee,
			})
		}
	}
	return result
}
