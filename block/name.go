// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/primegap/primegapd/fault"
)

// GenesisSentinel - previous pointer of the first block
const GenesisSentinel = "genesis"

const (
	nameExtension = ".json"
	indexDigits   = 4
)

// Tier - name prefix for a block size
//
// powers of two are written as "2_<exponent>", anything else as the
// decimal size
func Tier(blockSize uint64) string {
	if blockSize > 1 && 0 == blockSize&(blockSize-1) {
		return fmt.Sprintf("2_%d", bits.TrailingZeros64(blockSize))
	}
	return strconv.FormatUint(blockSize, 10)
}

// Name - file name of a block
func Name(tier string, index uint64) string {
	return fmt.Sprintf("%s-%0*d%s", tier, indexDigits, index, nameExtension)
}

// ParseName - split a block name into tier and index
func ParseName(name string) (string, uint64, error) {
	if !strings.HasSuffix(name, nameExtension) {
		return "", 0, fault.InvalidBlockName
	}
	base := strings.TrimSuffix(name, nameExtension)

	n := strings.LastIndexByte(base, '-')
	if n <= 0 || len(base)-n-1 < indexDigits {
		return "", 0, fault.InvalidBlockName
	}
	index, err := strconv.ParseUint(base[n+1:], 10, 64)
	if nil != err {
		return "", 0, fault.InvalidBlockName
	}
	return base[:n], index, nil
}

// IsName - true if name is a block of the tier
func IsName(tier string, name string) bool {
	t, _, err := ParseName(name)
	return nil == err && t == tier
}

// SortNames - order block names by tier then index
//
// plain string order breaks once indexes exceed four digits
func SortNames(names []string) {
	sort.SliceStable(names, func(i int, j int) bool {
		ta, ia, errA := ParseName(names[i])
		tb, ib, errB := ParseName(names[j])
		if nil != errA || nil != errB || ta != tb {
			return names[i] < names[j]
		}
		return ia < ib
	})
}
