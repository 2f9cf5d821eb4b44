// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment

import (
	"crypto/rand"
	"fmt"
	"os"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/mode"
	"github.com/bitmark-inc/marketd/storage"
	"github.com/bitmark-inc/marketd/wallet"
)

// test database file
const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test"
)

// Test main entrypoint
func TestMain(m *testing.M) {
	if err := setup(); err != nil {
		fmt.Fprintf(os.Stderr, "setup error: %s\n", err)
		os.Exit(1)
	}
	result := m.Run()
	teardown()
	os.Exit(result)
}

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
}

// configure for testing
func setup() error {
	removeFiles()
	os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)

	_ = mode.Initialise(true)

	// open database
	err := storage.Initialise(databaseFileName)
	if err != nil {
		return fmt.Errorf("storage initialise error: %s", err)
	}

	return nil
}

// post test cleanup
func teardown() {
	storage.Finalise()
	_ = mode.Finalise()
	logger.Finalise()
	removeFiles()
}

// a fresh test account
func makeAccount(t *testing.T) *account.Account {
	t.Helper()
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("key generation error: %s", err)
	}
	return &account.Account{
		AccountInterface: &account.ED25519Account{
			Test:      true,
			PublicKey: publicKey,
		},
	}
}

// a wallet with a balance, owned by a fresh account
func makeWallet(t *testing.T, balance uint64) *wallet.Wallet {
	t.Helper()
	return &wallet.Wallet{
		Owner:   makeAccount(t),
		Balance: balance,
	}
}

// a started storage transaction
func newTrx(t *testing.T) storage.Transaction {
	t.Helper()
	trx := storage.NewTransaction()
	if err := trx.Begin(); nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}
	return trx
}
