// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/primegap/primegapd/fault"
)

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

// Store - persistence of block records
//
// records of different blocks may be saved concurrently
type Store interface {
	// all block names in sorted order
	List() ([]string, error)

	// read one record, fault.BlockNotPlanned if absent
	Load(name string) (*Record, error)

	// overwrite a planned record, fault.BlockNotPlanned if absent
	Save(name string, record *Record) error

	// write blank records, existing names are left untouched
	// returns the number written
	Create(records []*Record) (int, error)
}

// Backend names
const (
	FileBackend    = "file"
	LevelDBBackend = "leveldb"
)

// NewStore - a store for the configured backend
//
// directory is only used by the file backend, the LevelDB backend
// needs storage to be initialised first
func NewStore(backend string, directory string, tier string) (Store, error) {
	switch backend {
	case FileBackend:
		s, err := NewFileStore(directory, tier)
		if nil != err {
			return nil, err
		}
		return s, nil
	case LevelDBBackend:
		s, err := NewLevelDBStore(tier)
		if nil != err {
			return nil, err
		}
		return s, nil
	default:
		return nil, fault.InvalidStoreBackend
	}
}

// LoadAll - every record in list order
func LoadAll(s Store) ([]*Record, error) {
	names, err := s.List()
	if nil != err {
		return nil, err
	}
	records := make([]*Record, 0, len(names))
	for _, name := range names {
		r, err := s.Load(name)
		if nil != err {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func checkName(name string, record *Record) error {
	if name != record.Name() {
		return fault.InvalidBlockName
	}
	return nil
}
