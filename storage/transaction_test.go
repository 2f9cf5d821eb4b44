// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/storage"
)

// test database file
const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test"
)

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
}

// configure for testing
func setup(t *testing.T) {
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
	_ = logger.Initialise(logging)

	err := storage.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

func TestTransactionReadYourWrites(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := storage.NewTransaction()
	if err := trx.Begin(); nil != err {
		t.Fatalf("begin error: %s", err)
	}
	defer trx.Abort()

	key := []byte("key-one")

	if trx.Has(storage.Pool.TestData, key) {
		t.Fatalf("unexpected key before put")
	}

	trx.Put(storage.Pool.TestData, key, []byte("data-one"))
	if !bytes.Equal([]byte("data-one"), trx.Get(storage.Pool.TestData, key)) {
		t.Errorf("buffered write not visible to Get")
	}

	// later operations shadow earlier ones
	trx.Put(storage.Pool.TestData, key, []byte("data-one(NEW)"))
	if !bytes.Equal([]byte("data-one(NEW)"), trx.Get(storage.Pool.TestData, key)) {
		t.Errorf("overwrite not visible to Get")
	}

	trx.Delete(storage.Pool.TestData, key)
	if nil != trx.Get(storage.Pool.TestData, key) || trx.Has(storage.Pool.TestData, key) {
		t.Errorf("buffered delete not visible")
	}

	// nothing committed: the database must not contain the key
	if nil != storage.Pool.TestData.Get(key) {
		t.Errorf("uncommitted write reached the database")
	}
}

func TestTransactionCheckpointRollback(t *testing.T) {
	setup(t)
	defer teardown(t)

	keep := []byte("key-keep")
	undo := []byte("key-undo")

	trx := storage.NewTransaction()
	if err := trx.Begin(); nil != err {
		t.Fatalf("begin error: %s", err)
	}

	trx.Put(storage.Pool.TestData, keep, []byte("data-keep"))

	trx.Checkpoint()

	trx.Put(storage.Pool.TestData, undo, []byte("data-undo"))
	trx.Delete(storage.Pool.TestData, keep)

	trx.Rollback()

	// pre-checkpoint operations survive, later ones are discarded
	if !bytes.Equal([]byte("data-keep"), trx.Get(storage.Pool.TestData, keep)) {
		t.Errorf("pre-checkpoint write lost by rollback")
	}
	if trx.Has(storage.Pool.TestData, undo) {
		t.Errorf("post-checkpoint write survived rollback")
	}

	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}

	if !bytes.Equal([]byte("data-keep"), storage.Pool.TestData.Get(keep)) {
		t.Errorf("committed value missing from database")
	}
	if storage.Pool.TestData.Has(undo) {
		t.Errorf("rolled back value reached the database")
	}
}

func TestTransactionExclusiveUse(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := storage.NewTransaction()
	if err := trx.Begin(); nil != err {
		t.Fatalf("begin error: %s", err)
	}
	if err := trx.Begin(); fault.ErrTransactionInUse != err {
		t.Fatalf("second begin: actual: %v  expected: %v", err, fault.ErrTransactionInUse)
	}

	trx.Abort()
	if err := trx.Begin(); nil != err {
		t.Fatalf("begin after abort error: %s", err)
	}
	trx.Abort()
}

func TestTransactionAbortDiscards(t *testing.T) {
	setup(t)
	defer teardown(t)

	key := []byte("key-abandoned")

	trx := storage.NewTransaction()
	if err := trx.Begin(); nil != err {
		t.Fatalf("begin error: %s", err)
	}
	trx.Put(storage.Pool.TestData, key, []byte("data"))
	trx.Abort()

	if storage.Pool.TestData.Has(key) {
		t.Errorf("aborted write reached the database")
	}
}
