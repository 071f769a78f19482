// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/numeral"
)

// behaviour shared by all backends
func exerciseStore(t *testing.T, s block.Store) {
	records, err := block.Plan(numeral.Default, "1000", 4, 1000, planTime)
	assert.Nil(t, err, "plan")

	n, err := s.Create(records)
	assert.Nil(t, err, "create")
	assert.Equal(t, 4, n, "created")

	names, err := s.List()
	assert.Nil(t, err, "list")
	assert.Equal(t, []string{
		"1000-0000.json",
		"1000-0001.json",
		"1000-0002.json",
		"1000-0003.json",
	}, names, "names")

	// fill one block and save it
	r, err := s.Load("1000-0002.json")
	assert.Nil(t, err, "load")
	assert.True(t, r.IsBlank(), "blank")
	fill(t, r)
	err = s.Save(r.Name(), r)
	assert.Nil(t, err, "save")

	// creating again must not overwrite the filled block
	n, err = s.Create(records)
	assert.Nil(t, err, "create again")
	assert.Equal(t, 0, n, "nothing created")

	loaded, err := s.Load("1000-0002.json")
	assert.Nil(t, err, "reload")
	assert.True(t, loaded.IsComplete(), "complete")
	assert.Equal(t, r.Data.EncodedData, loaded.Data.EncodedData, "stream")
	assert.Nil(t, block.Verify(numeral.Default, loaded), "verify")

	// unplanned names
	_, err = s.Load("1000-0009.json")
	assert.Equal(t, fault.BlockNotPlanned, err, "load unplanned")

	stray, err := block.Plan(numeral.Default, "1000", 10, 1000, planTime)
	assert.Nil(t, err, "plan more")
	err = s.Save(stray[9].Name(), stray[9])
	assert.Equal(t, fault.BlockNotPlanned, err, "save unplanned")

	err = s.Save("1000-0001.json", r)
	assert.Equal(t, fault.InvalidBlockName, err, "name mismatch")

	all, err := block.LoadAll(s)
	assert.Nil(t, err, "load all")
	assert.Nil(t, block.VerifyChain(all), "chain")
}

func TestFileStore(t *testing.T) {
	directory, err := ioutil.TempDir(testingDirName, "files-")
	assert.Nil(t, err, "temp dir")

	s, err := block.NewStore(block.FileBackend, directory, "1000")
	assert.Nil(t, err, "new file store")

	exerciseStore(t, s)

	// other files in the directory are ignored
	err = ioutil.WriteFile(filepath.Join(directory, "progress.json"), []byte("{}"), 0600)
	assert.Nil(t, err, "write stray")
	names, err := s.List()
	assert.Nil(t, err, "list")
	assert.Equal(t, 4, len(names), "only block files")

	_, err = s.Load("../progress.json")
	assert.Equal(t, fault.InvalidBlockName, err, "path in name")
}

func TestFileStoreMissingDirectory(t *testing.T) {
	_, err := block.NewFileStore(filepath.Join(testingDirName, "absent"), "1000")
	assert.True(t, fault.IsErrIO(err), "missing directory: %v", err)
}

func TestLevelDBStore(t *testing.T) {
	s, err := block.NewStore(block.LevelDBBackend, "", "1000")
	assert.Nil(t, err, "new leveldb store")

	exerciseStore(t, s)
}

func TestUnknownBackend(t *testing.T) {
	_, err := block.NewStore("tape", blocksDirName, "1000")
	assert.Equal(t, fault.InvalidStoreBackend, err, "unknown backend")
}
