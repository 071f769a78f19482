// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/fault"
)

func TestTier(t *testing.T) {
	assert.Equal(t, "2_32", block.Tier(1<<32), "2^32")
	assert.Equal(t, "2_10", block.Tier(1024), "2^10")
	assert.Equal(t, "1000", block.Tier(1000), "decimal")
	assert.Equal(t, "1", block.Tier(1), "one")
}

func TestName(t *testing.T) {
	assert.Equal(t, "2_32-0000.json", block.Name("2_32", 0), "first")
	assert.Equal(t, "2_32-0255.json", block.Name("2_32", 255), "last of a batch")
	assert.Equal(t, "2_32-12345.json", block.Name("2_32", 12345), "wide index")
}

func TestParseName(t *testing.T) {
	tier, index, err := block.ParseName("2_32-0042.json")
	assert.Nil(t, err, "parse")
	assert.Equal(t, "2_32", tier, "tier")
	assert.Equal(t, uint64(42), index, "index")

	for _, name := range []string{
		"2_32-0042.txt",
		"2_32-42.json",
		"-0042.json",
		"2_32-00x2.json",
		"genesis",
	} {
		_, _, err := block.ParseName(name)
		assert.Equal(t, fault.InvalidBlockName, err, "name: %q", name)
	}

	assert.True(t, block.IsName("2_32", "2_32-0001.json"), "same tier")
	assert.False(t, block.IsName("2_10", "2_32-0001.json"), "other tier")
}

func TestSortNames(t *testing.T) {
	names := []string{
		"2_32-10000.json",
		"2_32-0002.json",
		"2_32-9999.json",
		"2_32-0000.json",
	}
	block.SortNames(names)
	assert.Equal(t, []string{
		"2_32-0000.json",
		"2_32-0002.json",
		"2_32-9999.json",
		"2_32-10000.json",
	}, names, "index order")
}
