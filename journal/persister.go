// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package journal

import (
	"io/ioutil"
	"os"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/storage"
	"github.com/primegap/primegapd/util"
)

// Persister - whole document storage
type Persister interface {
	// the last document written, fault.JournalNotFound if none
	Read() ([]byte, error)

	// replace the document, readers must never see a partial write
	Write([]byte) error
}

// FilePersister - journal in a single JSON file
type FilePersister struct {
	name string
}

// NewFilePersister - persister for a file name
func NewFilePersister(name string) *FilePersister {
	return &FilePersister{
		name: name,
	}
}

// Read - the whole file
func (p *FilePersister) Read() ([]byte, error) {
	buffer, err := ioutil.ReadFile(p.name)
	if os.IsNotExist(err) {
		return nil, fault.JournalNotFound
	}
	if nil != err {
		return nil, fault.IOFailure("read", p.name, err)
	}
	return buffer, nil
}

// Write - replace the file atomically
func (p *FilePersister) Write(buffer []byte) error {
	err := util.WriteFileAtomic(p.name, buffer, 0600)
	if nil != err {
		return fault.IOFailure("write", p.name, err)
	}
	return nil
}

// key of the document in the journal pool
var journalKey = []byte("journal")

// LevelDBPersister - journal in the Journal pool
type LevelDBPersister struct {
	pool *storage.PoolHandle
}

// NewLevelDBPersister - persister on the initialised database
func NewLevelDBPersister() (*LevelDBPersister, error) {
	if nil == storage.Pool.Journal {
		return nil, fault.NotInitialised
	}
	return &LevelDBPersister{
		pool: storage.Pool.Journal,
	}, nil
}

// Read - the stored document
func (p *LevelDBPersister) Read() ([]byte, error) {
	buffer, err := p.pool.Get(journalKey)
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.JournalNotFound
	}
	return buffer, nil
}

// Write - replace the stored document
func (p *LevelDBPersister) Write(buffer []byte) error {
	return p.pool.Put(journalKey, buffer)
}
