// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/marketd/fault"
)

// Transaction - the versioned transactional view over the pools
//
// writes are buffered in an ordered operation log and only reach the
// database on Commit; Checkpoint marks a savepoint and Rollback
// discards every operation made since that mark - an in-call
// savepoint, not a cross-transaction undo
type Transaction interface {
	Begin() error
	Get(*PoolHandle, []byte) []byte
	Has(*PoolHandle, []byte) bool
	Put(*PoolHandle, []byte, []byte)
	Delete(*PoolHandle, []byte)
	Checkpoint()
	Rollback()
	Commit() error
	Abort()
}

// one buffered write
type operation struct {
	remove bool
	key    string // prefixed key
	value  []byte
}

type transactionData struct {
	sync.Mutex
	inUse bool
	ops   []operation
	mark  int
}

// NewTransaction - create an unused transaction over the current database
func NewTransaction() Transaction {
	return &transactionData{}
}

// Begin - mark the transaction as in use
//
// a transaction instance is single threaded; Begin fails if it was
// already started and not yet committed or aborted
func (t *transactionData) Begin() error {
	t.Lock()
	defer t.Unlock()

	if t.inUse {
		return fault.ErrTransactionInUse
	}
	t.inUse = true
	t.ops = t.ops[:0]
	t.mark = 0
	return nil
}

// Get - read through the operation log then fall back to the database
//
// a transaction sees its own uncommitted writes
func (t *transactionData) Get(p *PoolHandle, key []byte) []byte {
	prefixed := string(p.prefixKey(key))
	for i := len(t.ops) - 1; i >= 0; i -= 1 {
		if t.ops[i].key == prefixed {
			if t.ops[i].remove {
				return nil
			}
			return t.ops[i].value
		}
	}
	return p.Get(key)
}

// Has - check a key through the operation log then the database
func (t *transactionData) Has(p *PoolHandle, key []byte) bool {
	prefixed := string(p.prefixKey(key))
	for i := len(t.ops) - 1; i >= 0; i -= 1 {
		if t.ops[i].key == prefixed {
			return !t.ops[i].remove
		}
	}
	return p.Has(key)
}

// Put - buffer a write
func (t *transactionData) Put(p *PoolHandle, key []byte, value []byte) {
	buffered := make([]byte, len(value))
	copy(buffered, value)
	t.ops = append(t.ops, operation{
		key:   string(p.prefixKey(key)),
		value: buffered,
	})
}

// Delete - buffer a removal
func (t *transactionData) Delete(p *PoolHandle, key []byte) {
	t.ops = append(t.ops, operation{
		remove: true,
		key:    string(p.prefixKey(key)),
	})
}

// Checkpoint - set the savepoint for a later Rollback
func (t *transactionData) Checkpoint() {
	t.mark = len(t.ops)
}

// Rollback - discard all operations made since the last Checkpoint
//
// operations made before the checkpoint are retained and will still
// commit
func (t *transactionData) Rollback() {
	t.ops = t.ops[:t.mark]
}

// Commit - replay the operation log into a batch and write it
func (t *transactionData) Commit() error {
	t.Lock()
	defer t.Unlock()

	batch := new(leveldb.Batch)
	for _, op := range t.ops {
		if op.remove {
			batch.Delete([]byte(op.key))
		} else {
			batch.Put([]byte(op.key), op.value)
		}
	}

	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return fault.ErrNotInitialised
	}
	err := poolData.db.Write(batch, nil)
	if nil != err {
		return err
	}

	t.ops = t.ops[:0]
	t.mark = 0
	t.inUse = false
	return nil
}

// Abort - discard the whole operation log
func (t *transactionData) Abort() {
	t.Lock()
	defer t.Unlock()

	t.ops = t.ops[:0]
	t.mark = 0
	t.inUse = false
}
