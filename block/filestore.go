// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/util"
)

// FileStore - one JSON file per block in a directory
type FileStore struct {
	log       *logger.L
	directory string
	tier      string
}

// NewFileStore - store in an existing directory
func NewFileStore(directory string, tier string) (*FileStore, error) {
	info, err := os.Stat(directory)
	if nil != err {
		return nil, fault.IOFailure("stat", directory, err)
	}
	if !info.IsDir() {
		return nil, fault.IOFailure("stat", directory, os.ErrInvalid)
	}

	return &FileStore{
		log:       logger.New("blockstore"),
		directory: directory,
		tier:      tier,
	}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.directory, name)
}

// List - block files of this tier in index order
func (s *FileStore) List() ([]string, error) {
	entries, err := ioutil.ReadDir(s.directory)
	if nil != err {
		return nil, fault.IOFailure("list", s.directory, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() && IsName(s.tier, e.Name()) {
			names = append(names, e.Name())
		}
	}
	SortNames(names)
	return names, nil
}

// Load - read one block file
func (s *FileStore) Load(name string) (*Record, error) {
	if !util.IsPlainName(name) {
		return nil, fault.InvalidBlockName
	}
	buffer, err := ioutil.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fault.BlockNotPlanned
	}
	if nil != err {
		return nil, fault.IOFailure("read", name, err)
	}
	return Unmarshal(buffer)
}

// Save - replace a planned block file
func (s *FileStore) Save(name string, record *Record) error {
	if err := checkName(name, record); nil != err {
		return err
	}
	if !util.IsPlainName(name) {
		return fault.InvalidBlockName
	}
	if !util.EnsureFileExists(s.path(name)) {
		return fault.BlockNotPlanned
	}
	return s.write(name, record)
}

// Create - write blank block files that do not yet exist
func (s *FileStore) Create(records []*Record) (int, error) {
	n := 0
	for _, r := range records {
		name := r.Name()
		if !util.IsPlainName(name) {
			return n, fault.InvalidBlockName
		}
		if util.EnsureFileExists(s.path(name)) {
			s.log.Debugf("exists: %s", name)
			continue
		}
		if err := s.write(name, r); nil != err {
			return n, err
		}
		n += 1
	}
	s.log.Infof("created: %d of %d blocks in: %q", n, len(records), s.directory)
	return n, nil
}

func (s *FileStore) write(name string, record *Record) error {
	buffer, err := record.Marshal()
	if nil != err {
		return err
	}
	err = util.WriteFileAtomic(s.path(name), buffer, 0600)
	if nil != err {
		return fault.IOFailure("write", name, err)
	}
	s.log.Tracef("saved: %s  bytes: %d", name, len(buffer))
	return nil
}
