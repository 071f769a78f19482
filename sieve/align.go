// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sieve

import (
	"math"
)

// largest value whose square fits in 64 bits
const maximumRoot = math.MaxUint32

// Align - distance from number up to the next multiple of prime
//
// zero if number is already a multiple
func Align(number uint64, prime uint64) uint64 {
	remainder := number % prime
	if 0 == remainder {
		return 0
	}
	return prime - remainder
}

// integer square root: largest r with r*r <= n
func isqrt(n uint64) uint64 {
	r := uint64(math.Sqrt(float64(n)))
	if r > maximumRoot {
		r = maximumRoot
	}
	for r*r > n {
		r -= 1
	}
	for r < maximumRoot && (r+1)*(r+1) <= n {
		r += 1
	}
	return r
}
