// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/journal"
	"github.com/primegap/primegapd/numeral"
	"github.com/primegap/primegapd/sieve"
)

const (
	testingDirName = "testing"
	testTier       = "1000"
)

// Test main entrypoint
func TestMain(m *testing.M) {
	os.RemoveAll(testingDirName)
	if err := os.Mkdir(testingDirName, 0o700); nil != err {
		os.Exit(1)
	}

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "trace",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		os.Exit(1)
	}

	result := m.Run()

	logger.Finalise()
	os.RemoveAll(testingDirName)
	os.Exit(result)
}

// two complete blocks 0..1999 and a journal
func buildArchive(t *testing.T) string {
	directory := filepath.Join(testingDirName, t.Name())
	err := os.MkdirAll(directory, 0o700)
	assert.Nil(t, err, "mkdir")

	records, err := block.Plan(numeral.Default, testTier, 2, 1000, time.Now())
	assert.Nil(t, err, "plan")
	store, err := block.NewFileStore(directory, testTier)
	assert.Nil(t, err, "store")
	_, err = store.Create(records)
	assert.Nil(t, err, "create")

	genesis, err := sieve.NewSegment(0, 999)
	assert.Nil(t, err, "genesis segment")
	e0, err := sieve.NewEncoder(numeral.Default, 0, 999)
	assert.Nil(t, err, "genesis encoder")
	assert.Nil(t, genesis.Genesis(e0, sieve.Options{}), "genesis")
	assert.Nil(t, records[0].Apply(e0.Statistics(), e0.Stream()), "apply genesis")
	assert.Nil(t, store.Save(records[0].Name(), records[0]), "save genesis")

	basis, err := sieve.DecodeBasis(numeral.Default, e0.Stream(), 0, 44)
	assert.Nil(t, err, "basis")
	second, err := sieve.NewSegment(1000, 1999)
	assert.Nil(t, err, "segment")
	assert.Nil(t, second.Propagate(basis), "propagate")
	e1, err := sieve.NewEncoder(numeral.Default, 1000, 1999)
	assert.Nil(t, err, "encoder")
	assert.Nil(t, second.Derive(e1, sieve.Options{}), "derive")
	assert.Nil(t, records[1].Apply(e1.Statistics(), e1.Stream()), "apply")
	assert.Nil(t, store.Save(records[1].Name(), records[1]), "save")

	_, err = journal.Load(journal.NewFilePersister(filepath.Join(directory, "progress.json")), journal.Config{
		Genesis:     records[0].Name(),
		Names:       []string{records[0].Name(), records[1].Name()},
		MaxParallel: 2,
		BlockSize:   1000,
		Base:        numeral.Default.Base(),
	})
	assert.Nil(t, err, "journal")

	return directory
}

func run(directory string, arguments ...string) (string, error) {
	var buffer bytes.Buffer
	app := newApp(&buffer, &buffer)
	args := []string{"primegap-cli", "--directory", directory, "--tier", testTier,
		"--journal", filepath.Join(directory, "progress.json")}
	err := app.Run(append(args, arguments...))
	return buffer.String(), err
}

func TestList(t *testing.T) {
	directory := buildArchive(t)

	out, err := run(directory, "list")
	assert.Nil(t, err, "list")
	assert.Contains(t, out, "1000-0000.json", "genesis listed")
	assert.Contains(t, out, "primes: 168", "primes below 1000")
	assert.Contains(t, out, "primes: 135", "primes 1000..1999")
	assert.Equal(t, 2, strings.Count(out, "complete"), "both complete")
}

func TestShow(t *testing.T) {
	directory := buildArchive(t)

	out, err := run(directory, "show", "--name", "1000-0001.json")
	assert.Nil(t, err, "show")
	assert.Contains(t, out, `"current_file": "1000-0001.json"`, "chain")
	assert.Contains(t, out, `"total_primes": 135`, "metadata")
	assert.Contains(t, out, `"encoded_data": ""`, "stream omitted")

	_, err = run(directory, "show")
	assert.Equal(t, ErrNameRequired, err, "missing name")

	_, err = run(directory, "show", "--name", "1000-0009.json")
	assert.Equal(t, fault.BlockNotPlanned, err, "unknown block")
}

func TestJournal(t *testing.T) {
	directory := buildArchive(t)

	out, err := run(directory, "journal")
	assert.Nil(t, err, "journal")
	assert.Contains(t, out, `"max_parallel_files": 2`, "settings")
	assert.Contains(t, out, `"1000-0001.json": false`, "file list")
}

func TestDecode(t *testing.T) {
	directory := buildArchive(t)

	out, err := run(directory, "decode", "--name", "1000-0000.json", "--count", "3")
	assert.Nil(t, err, "decode")
	assert.Equal(t, "2  gap: 2\n3  gap: 1\n5  gap: 2\nprimes: 168  trailing: 2\n", out, "first primes")

	// 7 and 11 after 5, no tail yet
	out, err = run(directory, "decode", "--stream", "24", "--origin", "5")
	assert.Nil(t, err, "decode stream")
	assert.Equal(t, "7  gap: 2\n11  gap: 4\nprimes: 2  (partial stream)\n", out, "stream")

	_, err = run(directory, "decode")
	assert.Equal(t, ErrNoInput, err, "no input")
	_, err = run(directory, "decode", "--name", "x", "--stream", "1")
	assert.Equal(t, ErrTooManyInputs, err, "both inputs")
}

func TestVerify(t *testing.T) {
	directory := buildArchive(t)

	out, err := run(directory, "verify")
	assert.Nil(t, err, "verify")
	assert.Contains(t, out, "1000-0000.json: ok", "genesis")
	assert.Contains(t, out, "chain: ok", "chain")

	// damage the stream of the second block
	store, err := block.NewFileStore(directory, testTier)
	assert.Nil(t, err, "store")
	r, err := store.Load("1000-0001.json")
	assert.Nil(t, err, "load")
	r.Data.EncodedData = "1" + r.Data.EncodedData[1:]
	assert.Nil(t, store.Save(r.Name(), r), "save")

	out, err = run(directory, "verify", "1000-0001.json")
	assert.Equal(t, ErrVerifyFailures, err, "failure")
	assert.Contains(t, out, "1000-0001.json: FAIL", "reported")
	assert.NotContains(t, out, "chain", "chain only checked for all")
}

func TestEncodeValue(t *testing.T) {
	out, err := run(".", "encode", "0", "173", "174", "30276")
	assert.Nil(t, err, "encode")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, 4, len(lines), "lines")
	assert.Equal(t, "174  :10", lines[2], "two digits")
	assert.Equal(t, "30276  :100|", lines[3], "three digits")

	out, err = run(".", "value", ":10", ":100|", "A")
	assert.Nil(t, err, "value")
	assert.Equal(t, ":10  174\n:100|  30276\nA  10\n", out, "values")

	_, err = run(".", "encode", "--", "-5")
	assert.Equal(t, fault.NegativeValue, err, "negative")
}
