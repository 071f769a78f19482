// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sieve - segmented Sieve of Eratosthenes
//
// A Segment owns the bit vector for one block: bit i represents the
// number start+i and is set while that number is still a prime
// candidate.  The genesis segment (start 0) derives its primes from
// scratch.  Every later segment is sieved by propagating the prime
// basis decoded from the genesis block's gap stream.
//
// Gap streams hold one token per prime: the distance from the
// previous prime, or from the block start for the first prime, so a
// running sum starting at the block start recovers every prime.  The
// stream ends with a tail token holding the count of numbers after
// the last prime up to the end of the block.
//
// Segment life cycle:
//
//   Admitted --Genesis--------------------> Encoded --Complete--> Complete
//   Admitted --Propagate--> Sieved --Derive--> Encoded
package sieve
