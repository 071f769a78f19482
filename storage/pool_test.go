// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/storage"
)

// helper to add to pool
func poolPut(t *testing.T, p *storage.PoolHandle, key string, data string) {
	err := p.Put([]byte(key), []byte(data))
	if nil != err {
		t.Fatalf("put: %q error: %s", key, err)
	}
}

// helper to remove from pool
func poolDelete(t *testing.T, p *storage.PoolHandle, key string) {
	err := p.Delete([]byte(key))
	if nil != err {
		t.Fatalf("delete: %q error: %s", key, err)
	}
}

// main pool test
func TestPool(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	// ensure that pool was empty
	checkAgain(t, true)

	poolPut(t, p, "key-one", "data-one")
	poolPut(t, p, "key-two", "data-two")
	poolPut(t, p, "key-remove-me", "to be deleted")
	poolDelete(t, p, "key-remove-me")
	poolPut(t, p, "key-three", "data-three")
	poolPut(t, p, "key-one", "data-one")     // duplicate
	poolPut(t, p, "key-three", "data-three") // duplicate
	poolPut(t, p, "key-four", "data-four")
	poolPut(t, p, "key-delete-this", "to be deleted")
	poolPut(t, p, "key-five", "data-five")
	poolPut(t, p, "key-six", "data-six")
	poolDelete(t, p, "key-delete-this")
	poolPut(t, p, "key-seven", "data-seven")
	poolPut(t, p, "key-one", "data-one(NEW)") // duplicate

	// ensure that data is correct
	checkResults(t, p)

	// recheck
	checkAgain(t, false)

	// check that restarting database keeps data
	storage.Finalise()
	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	assert.Nil(t, err, "reopen")
	checkAgain(t, false)
}

func checkResults(t *testing.T, p *storage.PoolHandle) {

	// ensure we get all of the pool
	cursor := p.NewFetchCursor()
	data, err := cursor.Fetch(20)
	if nil != err {
		t.Errorf("Error on Fetch: %v", err)
		return
	}

	// ensure lengths match
	if len(data) != len(expectedElements) {
		t.Errorf("Length mismatch, got: %d  expected: %d", len(data), len(expectedElements))
	}

	// compare all items from pool
	for i, a := range data {
		if i >= len(expectedElements) {
			t.Errorf("%d: Excess, got: '%s'  expected: Nothing", i, a)
		} else if !bytes.Equal(expectedElements[i].Key, a.Key) || !bytes.Equal(expectedElements[i].Value, a.Value) {
			t.Errorf("%d: Mismatch, got: '%s:%s'  expected: '%s:%s'", i,
				a.Key, a.Value,
				expectedElements[i].Key, expectedElements[i].Value)
		}
	}

	// retrieve 2 elements then next 2 - ensure no overlap
	cursor = p.NewFetchCursor()
	firstPair, err := cursor.Fetch(2)
	if nil != err {
		t.Errorf("Error on Fetch: %v", err)
		return
	}
	secondPair, err := cursor.Fetch(2)
	if nil != err {
		t.Errorf("Error on Fetch: %v", err)
		return
	}
	if bytes.Equal(firstPair[1].Key, secondPair[0].Key) {
		t.Errorf("Fetch Overlap got duplicate: '%s:%s'", firstPair[1].Key, firstPair[1].Value)
	}
	assert.Equal(t, expectedElements[2].Key, secondPair[0].Key, "third element")

	// check key exists
	found, err := p.Has(testKey)
	assert.Nil(t, err, "has")
	assert.True(t, found, "not found: %q", testKey)

	// retrieve a key
	d2, err := p.Get(testKey)
	assert.Nil(t, err, "get")
	assert.Equal(t, testData, string(d2), "Mismatch on Get")

	// check that key does not exist
	found, err = p.Has(nonExistantKey)
	assert.Nil(t, err, "has")
	assert.False(t, found, "unexpectedly found: %q", nonExistantKey)

	// retrieve a key not in the pool
	dn, err := p.Get(nonExistantKey)
	assert.Nil(t, err, "get")
	assert.Nil(t, dn, "Unexpected data on Get")
}

func checkAgain(t *testing.T, empty bool) {

	p := storage.Pool.TestData

	keys, err := p.Keys()
	assert.Nil(t, err, "keys")
	if empty {
		assert.Equal(t, 0, len(keys), "pool was not empty")
	} else {
		assert.Equal(t, len(expectedElements), len(keys), "key count")
	}

	for i, e := range expectedElements {
		data, err := p.Get(e.Key)
		assert.Nil(t, err, "checkAgain: %d: get", i)
		if empty {
			assert.Nil(t, data, "checkAgain: %d: Unexpected data on Get('%s')", i, e.Key)
		} else {
			assert.Equal(t, e.Value, data, "checkAgain: %d: Mismatch on Get('%s')", i, e.Key)
		}
	}

	// other pools are not affected
	found, err := storage.Pool.Blocks.Has(testKey)
	assert.Nil(t, err, "has")
	assert.False(t, found, "key leaked into another pool")
}

func TestFetchCount(t *testing.T) {
	setup(t)
	defer teardown(t)

	_, err := storage.Pool.TestData.NewFetchCursor().Fetch(0)
	assert.Equal(t, fault.InvalidCount, err, "zero count")
}

func TestBatch(t *testing.T) {
	setup(t)
	defer teardown(t)

	b := storage.NewBatch()
	b.Put(storage.Pool.Blocks, []byte("one"), []byte("1"))
	b.Put(storage.Pool.Journal, []byte("two"), []byte("2"))
	b.Put(storage.Pool.Blocks, []byte("three"), []byte("3"))
	b.Delete(storage.Pool.Blocks, []byte("three"))
	assert.Equal(t, 4, b.Len(), "queued")

	// nothing written before commit
	found, err := storage.Pool.Blocks.Has([]byte("one"))
	assert.Nil(t, err, "has")
	assert.False(t, found, "written before commit")

	err = b.Commit()
	assert.Nil(t, err, "commit")
	assert.Equal(t, 0, b.Len(), "batch reset")

	value, err := storage.Pool.Blocks.Get([]byte("one"))
	assert.Nil(t, err, "get")
	assert.Equal(t, []byte("1"), value, "blocks value")

	value, err = storage.Pool.Journal.Get([]byte("two"))
	assert.Nil(t, err, "get")
	assert.Equal(t, []byte("2"), value, "journal value")

	keys, err := storage.Pool.Blocks.Keys()
	assert.Nil(t, err, "keys")
	assert.Equal(t, [][]byte{[]byte("one")}, keys, "block keys")
}

func TestInitialiseTwice(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	assert.Equal(t, fault.AlreadyInitialised, err, "second initialise")
}

func TestReadOnlyMissing(t *testing.T) {
	removeFiles()
	err := storage.Initialise(databaseFileName, storage.ReadOnly)
	assert.NotNil(t, err, "read only open of missing database")
	assert.True(t, fault.IsErrIO(err), "io error: %v", err)
	removeFiles()
}
