// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/primegap/primegapd/fault"
)

// all writes reach the disk before returning
var ldbSync = ldb_opt.WriteOptions{
	Sync: true,
}

// Batch - a set of writes applied atomically
type Batch struct {
	batch *leveldb.Batch
}

// NewBatch - start an empty batch
func NewBatch() *Batch {
	return &Batch{
		batch: new(leveldb.Batch),
	}
}

// Put - queue a key/value pair for a pool
func (b *Batch) Put(p *PoolHandle, key []byte, value []byte) {
	b.batch.Put(p.prefixKey(key), value)
}

// Delete - queue removal of a key from a pool
func (b *Batch) Delete(p *PoolHandle, key []byte) {
	b.batch.Delete(p.prefixKey(key))
}

// Len - number of queued operations
func (b *Batch) Len() int {
	return b.batch.Len()
}

// Commit - write all queued operations
func (b *Batch) Commit() error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return fault.NotInitialised
	}
	if poolData.readOnly {
		return fault.IOFailure("commit", "batch", leveldb.ErrReadOnly)
	}
	err := poolData.database.Write(b.batch, &ldbSync)
	if nil != err {
		return fault.IOFailure("commit", "batch", err)
	}
	b.batch.Reset()
	return nil
}
