// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment

import (
	"testing"

	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/transactionrecord"
	"github.com/bitmark-inc/marketd/wallet"
)

func TestSplitCoins(t *testing.T) {
	testItems := []struct {
		amount uint64
		first  uint64
		second uint64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 1, 1},
		{7, 4, 3},
		{1000, 500, 500},
		{999999999999, 500000000000, 499999999999},
	}

	for i, item := range testItems {
		first, second := SplitCoins(item.amount)
		if first != item.first || second != item.second {
			t.Errorf("%d: SplitCoins(%d): actual: (%d, %d)  expected: (%d, %d)",
				i, item.amount, first, second, item.first, item.second)
		}
		if first+second != item.amount {
			t.Errorf("%d: shares do not sum to amount: %d + %d != %d",
				i, first, second, item.amount)
		}
	}
}

func TestSufficientFundsMinimumBound(t *testing.T) {
	recipient := makeWallet(t, 10)
	sender := makeWallet(t, 3)
	p := &Participants{
		Recipient: recipient,
		Sender:    sender,
	}

	// halves of 8 are (4, 4); both are checked against the minimum of
	// the two balances, so the richer side cannot compensate
	if SufficientFunds(transactionrecord.FeeStrategyRecipientAndSender, p, 8) {
		t.Errorf("expected halves of 8 to exceed the minimum balance of 3")
	}
	if !SufficientFunds(transactionrecord.FeeStrategyRecipientAndSender, p, 6) {
		t.Errorf("expected halves of 6 to fit the minimum balance of 3")
	}

	if !SufficientFunds(transactionrecord.FeeStrategyRecipient, p, 10) {
		t.Errorf("expected recipient balance of 10 to cover 10")
	}
	if SufficientFunds(transactionrecord.FeeStrategySender, p, 4) {
		t.Errorf("expected sender balance of 3 to fail 4")
	}

	// intermediary strategy without an intermediary wallet
	if SufficientFunds(transactionrecord.FeeStrategyIntermediary, p, 1) {
		t.Errorf("expected missing intermediary to fail")
	}

	// unknown discriminant
	if SufficientFunds(transactionrecord.FeeStrategy(99), p, 1) {
		t.Errorf("expected unknown strategy to fail")
	}
}

func TestMoveCoinsRecipientAndSender(t *testing.T) {
	trx := newTrx(t)
	defer trx.Abort()

	recipient := makeWallet(t, 100)
	sender := makeWallet(t, 100)
	receiver := makeWallet(t, 0)
	p := &Participants{
		Recipient: recipient,
		Sender:    sender,
	}

	err := MoveCoins(trx, transactionrecord.FeeStrategyRecipientAndSender, p, receiver, 9)
	if nil != err {
		t.Fatalf("move coins error: %s", err)
	}

	// halves of 9 are (5, 4): recipient pays the rounded-up half
	if 95 != recipient.Balance || 96 != sender.Balance {
		t.Errorf("payer balances: actual: (%d, %d)  expected: (95, 96)",
			recipient.Balance, sender.Balance)
	}
	if 9 != receiver.Balance {
		t.Errorf("receiver balance: actual: %d  expected: 9", receiver.Balance)
	}

	// persisted state must match the in-memory wallets
	stored, err := wallet.Fetch(trx, receiver.Owner)
	if nil != err {
		t.Fatalf("fetch error: %s", err)
	}
	if nil == stored || 9 != stored.Balance {
		t.Errorf("stored receiver: actual: %v", stored)
	}
}

func TestMoveCoinsInsufficientLeavesStateAlone(t *testing.T) {
	trx := newTrx(t)
	defer trx.Abort()

	recipient := makeWallet(t, 5)
	sender := makeWallet(t, 5)
	receiver := makeWallet(t, 0)
	p := &Participants{
		Recipient: recipient,
		Sender:    sender,
	}

	err := MoveCoins(trx, transactionrecord.FeeStrategySender, p, receiver, 6)
	if fault.ErrInsufficientFunds != err {
		t.Fatalf("error: actual: %v  expected: %v", err, fault.ErrInsufficientFunds)
	}
	if 5 != sender.Balance || 0 != receiver.Balance {
		t.Errorf("balances mutated on failure: (%d, %d)", sender.Balance, receiver.Balance)
	}
	if stored, _ := wallet.Fetch(trx, sender.Owner); nil != stored {
		t.Errorf("unexpected persisted wallet after failed move")
	}
}

func TestPayCommissionOddHalvesAnomaly(t *testing.T) {
	trx := newTrx(t)
	defer trx.Abort()

	recipient := makeWallet(t, 100)
	sender := makeWallet(t, 100)
	intermediary := makeWallet(t, 0)
	p := &Participants{
		Recipient:    recipient,
		Sender:       sender,
		Intermediary: intermediary,
	}

	const commission = 7

	err := PayCommission(trx, transactionrecord.FeeStrategyRecipientAndSender, p, commission)
	if nil != err {
		t.Fatalf("pay commission error: %s", err)
	}

	// both sides pay ceil(7/2) = 4, so the intermediary receives
	// commission + 1; the historic behaviour, asserted literally
	if 96 != recipient.Balance || 96 != sender.Balance {
		t.Errorf("payer balances: actual: (%d, %d)  expected: (96, 96)",
			recipient.Balance, sender.Balance)
	}
	if commission+1 != intermediary.Balance {
		t.Errorf("intermediary balance: actual: %d  expected: %d",
			intermediary.Balance, commission+1)
	}
}

func TestPayCommissionIntermediaryStrategyIsNoop(t *testing.T) {
	trx := newTrx(t)
	defer trx.Abort()

	recipient := makeWallet(t, 10)
	sender := makeWallet(t, 10)
	intermediary := makeWallet(t, 0)
	p := &Participants{
		Recipient:    recipient,
		Sender:       sender,
		Intermediary: intermediary,
	}

	// succeeds without any funds check or movement
	err := PayCommission(trx, transactionrecord.FeeStrategyIntermediary, p, 500)
	if nil != err {
		t.Fatalf("pay commission error: %s", err)
	}
	if 10 != recipient.Balance || 10 != sender.Balance || 0 != intermediary.Balance {
		t.Errorf("balances mutated: (%d, %d, %d)",
			recipient.Balance, sender.Balance, intermediary.Balance)
	}
}

func TestPay(t *testing.T) {
	trx := newTrx(t)
	defer trx.Abort()

	from := makeWallet(t, 50)
	to := makeWallet(t, 1)

	if err := Pay(trx, from, to, 49); nil != err {
		t.Fatalf("pay error: %s", err)
	}
	if 1 != from.Balance || 50 != to.Balance {
		t.Errorf("balances: actual: (%d, %d)  expected: (1, 50)", from.Balance, to.Balance)
	}

	if err := Pay(trx, from, to, 2); fault.ErrInsufficientFunds != err {
		t.Fatalf("error: actual: %v  expected: %v", err, fault.ErrInsufficientFunds)
	}
	if 1 != from.Balance || 50 != to.Balance {
		t.Errorf("balances mutated on failure: (%d, %d)", from.Balance, to.Balance)
	}
}

func TestTransferAssetsAllOrNothing(t *testing.T) {
	trx := newTrx(t)
	defer trx.Abort()

	var a, b transactionrecord.AssetIdentifier
	a[0] = 0x01
	b[0] = 0x02

	from := makeWallet(t, 0)
	from.AddAssets([]transactionrecord.Asset{
		{Id: a, Amount: 10},
		{Id: b, Amount: 1},
	})
	to := makeWallet(t, 0)

	// requesting more of b than held must move nothing at all
	err := TransferAssets(trx, from, to, []transactionrecord.Asset{
		{Id: a, Amount: 5},
		{Id: b, Amount: 2},
	})
	if fault.ErrInsufficientAssets != err {
		t.Fatalf("error: actual: %v  expected: %v", err, fault.ErrInsufficientAssets)
	}
	if 2 != len(from.Assets) || 0 != len(to.Assets) {
		t.Errorf("holdings mutated on failure")
	}

	err = TransferAssets(trx, from, to, []transactionrecord.Asset{
		{Id: a, Amount: 10},
		{Id: b, Amount: 1},
	})
	if nil != err {
		t.Fatalf("transfer assets error: %s", err)
	}
	if 0 != len(from.Assets) {
		t.Errorf("source holdings remain: %v", from.Assets)
	}
	if 2 != len(to.Assets) {
		t.Errorf("destination holdings: actual: %d  expected: 2", len(to.Assets))
	}
}
