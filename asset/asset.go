// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package asset - registered asset metadata
//
// every tradeable asset carries the address of its original creator
// and a per-unit royalty, payable to that creator whenever the asset
// changes hands; reads are fronted by an expiring cache since the
// metadata is immutable once registered
package asset

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/storage"
	"github.com/bitmark-inc/marketd/transactionrecord"
	"github.com/bitmark-inc/marketd/util"
)

// Data - the registered metadata for one asset
type Data struct {
	Creator *account.Account `json:"creator"` // base58
	Royalty uint64           `json:"royalty"` // coins per unit traded
}

// cache expiry times
const (
	cacheExpiry  = 1 * time.Minute
	cacheCleanup = 5 * time.Minute
)

// globals
var globalData struct {
	log   *logger.L
	cache *gocache.Cache

	// set once during initialise
	initialised bool
}

// Initialise - set up the metadata cache
func Initialise() error {
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("asset")
	globalData.log.Info("starting…")
	globalData.cache = gocache.New(cacheExpiry, cacheCleanup)
	globalData.initialised = true

	return nil
}

// Finalise - drop the cache
func Finalise() {
	if !globalData.initialised {
		return
	}
	globalData.log.Info("shutting down…")
	globalData.cache.Flush()
	globalData.initialised = false
}

// Store - register asset metadata
//
// key schema: Pool.Assets[asset identifier] → packed metadata; for
// node bootstrap and tests - issuance is not a marketplace transaction
func Store(trx storage.Transaction, assetId transactionrecord.AssetIdentifier, creator *account.Account, royalty uint64) {
	data := creator.Bytes()
	packed := make([]byte, 0, len(data)+2*util.Varint64MaximumBytes)
	packed = append(packed, util.ToVarint64(uint64(len(data)))...)
	packed = append(packed, data...)
	packed = append(packed, util.ToVarint64(royalty)...)

	if nil == trx {
		storage.Pool.Assets.Put(assetId[:], packed)
	} else {
		trx.Put(storage.Pool.Assets, assetId[:], packed)
	}

	if globalData.initialised {
		globalData.cache.Delete(assetId.String())
	}
}

// Fetch - look up asset metadata
//
// returns ErrAssetNotFound for an unregistered identifier
func Fetch(trx storage.Transaction, assetId transactionrecord.AssetIdentifier) (*Data, error) {

	if globalData.initialised {
		if cached, ok := globalData.cache.Get(assetId.String()); ok {
			return cached.(*Data), nil
		}
	}

	var packed []byte
	if nil == trx {
		packed = storage.Pool.Assets.Get(assetId[:])
	} else {
		packed = trx.Get(storage.Pool.Assets, assetId[:])
	}
	if nil == packed {
		return nil, fault.ErrAssetNotFound
	}

	creatorLength, creatorOffset := util.ClippedVarint64(packed, 1, 8192)
	if 0 == creatorOffset {
		return nil, fault.ErrInvalidItem
	}
	n := creatorOffset
	creator, err := account.AccountFromBytes(packed[n : n+creatorLength])
	if nil != err {
		return nil, err
	}
	n += creatorLength
	royalty, royaltyLength := util.FromVarint64(packed[n:])
	if 0 == royaltyLength {
		return nil, fault.ErrInvalidItem
	}

	data := &Data{
		Creator: creator,
		Royalty: royalty,
	}
	if globalData.initialised {
		globalData.cache.Set(assetId.String(), data, gocache.DefaultExpiration)
	}
	return data, nil
}
