// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/bitmark-inc/marketd/transactionrecord"
)

func makeId(fill byte) transactionrecord.AssetIdentifier {
	var id transactionrecord.AssetIdentifier
	for i := range id {
		id[i] = fill
	}
	return id
}

func TestBalanceMutation(t *testing.T) {
	w := &Wallet{}
	w.Increase(100)
	if 100 != w.Balance {
		t.Fatalf("balance: actual: %d  expected: 100", w.Balance)
	}
	if !w.IsSufficient(100) {
		t.Errorf("expected 100 to be sufficient")
	}
	if w.IsSufficient(101) {
		t.Errorf("expected 101 to be insufficient")
	}
	w.Decrease(40)
	if 60 != w.Balance {
		t.Fatalf("balance: actual: %d  expected: 60", w.Balance)
	}
}

func TestAddAssetsMergesRepeats(t *testing.T) {
	a := makeId(0x01)
	b := makeId(0x02)

	w := &Wallet{}
	w.AddAssets([]transactionrecord.Asset{
		{Id: a, Amount: 5},
		{Id: b, Amount: 2},
		{Id: a, Amount: 7},
		{Id: b, Amount: 0}, // zero amounts must not create holdings
	})

	if 2 != len(w.Assets) {
		t.Fatalf("holdings: actual: %d  expected: 2", len(w.Assets))
	}
	if a != w.Assets[0].Id || 12 != w.Assets[0].Amount {
		t.Errorf("first holding: actual: %v", w.Assets[0])
	}
	if b != w.Assets[1].Id || 2 != w.Assets[1].Amount {
		t.Errorf("second holding: actual: %v", w.Assets[1])
	}
}

func TestIsAssetsInWalletAccumulates(t *testing.T) {
	a := makeId(0x01)

	w := &Wallet{}
	w.AddAssets([]transactionrecord.Asset{{Id: a, Amount: 10}})

	// repeated entries for the same identifier must be summed before
	// checking against the holding
	request := []transactionrecord.Asset{
		{Id: a, Amount: 6},
		{Id: a, Amount: 6},
	}
	if w.IsAssetsInWallet(request) {
		t.Errorf("expected accumulated request of 12 to exceed holding of 10")
	}

	request = []transactionrecord.Asset{
		{Id: a, Amount: 6},
		{Id: a, Amount: 4},
	}
	if !w.IsAssetsInWallet(request) {
		t.Errorf("expected accumulated request of 10 to fit holding of 10")
	}
}

func TestRemoveAssetsDropsExhausted(t *testing.T) {
	a := makeId(0x01)
	b := makeId(0x02)

	w := &Wallet{}
	w.AddAssets([]transactionrecord.Asset{
		{Id: a, Amount: 5},
		{Id: b, Amount: 3},
	})

	w.RemoveAssets([]transactionrecord.Asset{{Id: a, Amount: 5}})

	if 1 != len(w.Assets) {
		t.Fatalf("holdings: actual: %d  expected: 1", len(w.Assets))
	}
	if b != w.Assets[0].Id || 3 != w.Assets[0].Amount {
		t.Errorf("remaining holding: actual: %v", w.Assets[0])
	}
}

func TestPackUnpackWallet(t *testing.T) {
	a := makeId(0x55)
	b := makeId(0xaa)

	w := &Wallet{
		Balance: 123456789,
		Assets: []transactionrecord.Asset{
			{Id: a, Amount: 7},
			{Id: b, Amount: 90000},
		},
	}

	unpacked, err := UnpackWallet(w.Pack())
	if nil != err {
		t.Fatalf("unpack error: %s", err)
	}
	if w.Balance != unpacked.Balance {
		t.Errorf("balance: actual: %d  expected: %d", unpacked.Balance, w.Balance)
	}
	if len(w.Assets) != len(unpacked.Assets) {
		t.Fatalf("holdings: actual: %d  expected: %d", len(unpacked.Assets), len(w.Assets))
	}
	for i, held := range w.Assets {
		if held != unpacked.Assets[i] {
			t.Errorf("holding: %d  actual: %v  expected: %v", i, unpacked.Assets[i], held)
		}
	}
}

func TestUnpackWalletCorrupt(t *testing.T) {
	_, err := UnpackWallet([]byte{0x00, 0x01, 0x02})
	if nil == err {
		t.Fatalf("unexpected success unpacking a short record")
	}
}
