// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/storage"
)

// LevelDBStore - block records in the Blocks pool
//
// values are zstd compressed JSON records keyed by block name
type LevelDBStore struct {
	log  *logger.L
	tier string
	pool *storage.PoolHandle
}

// NewLevelDBStore - store on the initialised database
func NewLevelDBStore(tier string) (*LevelDBStore, error) {
	if nil == storage.Pool.Blocks {
		return nil, fault.NotInitialised
	}
	return &LevelDBStore{
		log:  logger.New("blockstore"),
		tier: tier,
		pool: storage.Pool.Blocks,
	}, nil
}

// List - block names of this tier in index order
func (s *LevelDBStore) List() ([]string, error) {
	keys, err := s.pool.Keys()
	if nil != err {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name := string(k); IsName(s.tier, name) {
			names = append(names, name)
		}
	}
	SortNames(names)
	return names, nil
}

// Load - read one record
func (s *LevelDBStore) Load(name string) (*Record, error) {
	value, err := s.pool.Get([]byte(name))
	if nil != err {
		return nil, err
	}
	if nil == value {
		return nil, fault.BlockNotPlanned
	}
	buffer, err := Decompress(value)
	if nil != err {
		return nil, fault.CorruptBlockRecord
	}
	return Unmarshal(buffer)
}

// Save - replace a planned record
func (s *LevelDBStore) Save(name string, record *Record) error {
	if err := checkName(name, record); nil != err {
		return err
	}
	found, err := s.pool.Has([]byte(name))
	if nil != err {
		return err
	}
	if !found {
		return fault.BlockNotPlanned
	}
	value, err := pack(record)
	if nil != err {
		return err
	}
	s.log.Tracef("saved: %s  bytes: %d", name, len(value))
	return s.pool.Put([]byte(name), value)
}

// Create - write all missing blank records in one batch
func (s *LevelDBStore) Create(records []*Record) (int, error) {
	batch := storage.NewBatch()
	for _, r := range records {
		key := []byte(r.Name())
		found, err := s.pool.Has(key)
		if nil != err {
			return 0, err
		}
		if found {
			s.log.Debugf("exists: %s", r.Name())
			continue
		}
		value, err := pack(r)
		if nil != err {
			return 0, err
		}
		batch.Put(s.pool, key, value)
	}

	n := batch.Len()
	if n > 0 {
		if err := batch.Commit(); nil != err {
			return 0, err
		}
	}
	s.log.Infof("created: %d of %d blocks", n, len(records))
	return n, nil
}

func pack(record *Record) ([]byte, error) {
	buffer, err := record.Marshal()
	if nil != err {
		return nil, err
	}
	return Compress(buffer)
}
