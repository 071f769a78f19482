// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primegap/primegapd/util"
)

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/data/blocks", util.EnsureAbsolute("/data", "blocks"), "relative")
	assert.Equal(t, "/var/blocks", util.EnsureAbsolute("/data", "/var/blocks"), "absolute")
	assert.Equal(t, "/data/log", util.EnsureAbsolute("/data/x", "../log"), "cleaned")
}

func TestIsPlainName(t *testing.T) {
	assert.True(t, util.IsPlainName("journal.json"), "plain")
	assert.False(t, util.IsPlainName("dir/journal.json"), "with directory")
	assert.False(t, util.IsPlainName(""), "empty")
}

func TestWriteFileAtomic(t *testing.T) {
	directory, err := ioutil.TempDir("", "util-test-")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(directory)

	name := filepath.Join(directory, "journal.json")

	err = util.WriteFileAtomic(name, []byte("first"), 0600)
	assert.Nil(t, err, "first write")
	err = util.WriteFileAtomic(name, []byte("second"), 0600)
	assert.Nil(t, err, "second write")

	data, err := ioutil.ReadFile(name)
	assert.Nil(t, err, "read")
	assert.Equal(t, "second", string(data), "content")
	assert.True(t, util.EnsureFileExists(name), "exists")

	// no temporary files left behind
	entries, err := ioutil.ReadDir(directory)
	assert.Nil(t, err, "read dir")
	assert.Equal(t, 1, len(entries), "directory entries")
}

func TestWriteFileAtomicMissingDirectory(t *testing.T) {
	err := util.WriteFileAtomic("/nonexistent/directory/file.json", []byte("x"), 0600)
	assert.NotNil(t, err, "missing directory")
}
