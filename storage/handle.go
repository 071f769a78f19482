// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/primegap/primegapd/fault"
)

// PoolHandle - a prefixed key range of the database
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *leveldb.DB
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return fault.NotInitialised
	}
	err := p.database.Put(p.prefixKey(key), value, &ldbSync)
	if nil != err {
		return fault.IOFailure("put", string(key), err)
	}
	return nil
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return fault.NotInitialised
	}
	err := p.database.Delete(p.prefixKey(key), &ldbSync)
	if nil != err {
		return fault.IOFailure("delete", string(key), err)
	}
	return nil
}

// Get - read a value for a given key
//
// nil value if the key is not present
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return nil, fault.NotInitialised
	}
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	if nil != err {
		return nil, fault.IOFailure("get", string(key), err)
	}
	return value, nil
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) (bool, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return false, fault.NotInitialised
	}
	found, err := p.database.Has(p.prefixKey(key), nil)
	if nil != err {
		return false, fault.IOFailure("has", string(key), err)
	}
	return found, nil
}

// Keys - all keys of the pool in ascending order
func (p *PoolHandle) Keys() ([][]byte, error) {
	keys := [][]byte{}
	err := p.NewFetchCursor().Map(func(key []byte, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	return keys, err
}
