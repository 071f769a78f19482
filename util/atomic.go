// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// WriteFileAtomic - replace a file so readers see either the old or the new content
//
// data is written to a temporary file in the same directory, synced
// and then renamed over the target, the directory is synced last so
// the rename itself is durable
func WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	directory, base := filepath.Split(name)
	if "" == directory {
		directory = "."
	}

	f, err := ioutil.TempFile(directory, "."+base+".tmp-")
	if nil != err {
		return err
	}
	temporary := f.Name()

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(temporary)
		}
	}()

	if _, err := f.Write(data); nil != err {
		return err
	}
	if err := f.Chmod(perm); nil != err {
		return err
	}
	if err := f.Sync(); nil != err {
		return err
	}
	if err := f.Close(); nil != err {
		return err
	}
	if err := os.Rename(temporary, name); nil != err {
		return err
	}
	ok = true
	return syncDirectory(directory)
}

// flush the directory entry of a rename
func syncDirectory(directory string) error {
	d, err := os.Open(directory)
	if nil != err {
		return err
	}
	defer d.Close()
	return d.Sync()
}
