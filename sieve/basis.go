// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sieve

import (
	"github.com/primegap/primegapd/numeral"
)

// Basis - ascending primes recovered from a gap stream
//
// every prime in From..Covered is in Primes, a usable basis starts at
// the beginning of the number line
type Basis struct {
	Primes  []uint64
	From    uint64 // origin of the decoded stream
	Covered uint64
}

// DecodeBasis - rebuild the primes up to limit from a gap stream
//
// origin is the block start the stream's first gap is measured from
func DecodeBasis(codec *numeral.Codec, stream string, origin uint64, limit uint64) (*Basis, error) {
	basis := &Basis{
		Primes: make([]uint64, 0, estimatePrimes(limit)),
		From:   origin,
	}

	p := origin
	s := codec.NewScanner(stream)
	for s.Scan() {
		p += s.Value()
		if p > limit {
			// everything below this prime is known
			basis.Covered = p - 1
			return basis, nil
		}
		basis.Primes = append(basis.Primes, p)
	}
	if nil != s.Err() {
		return nil, s.Err()
	}

	if tail, ok := s.Tail(); ok {
		basis.Covered = p + tail
		if 0 == s.Count() {
			basis.Covered -= 1
		}
	} else if s.Count() > 0 {
		basis.Covered = p
	} else if origin > 0 {
		basis.Covered = origin - 1
	}
	return basis, nil
}

// PropagateStream - decode a prior block's stream and propagate it
func (s *Segment) PropagateStream(codec *numeral.Codec, stream string, origin uint64) error {
	basis, err := DecodeBasis(codec, stream, origin, isqrt(s.end))
	if nil != err {
		return err
	}
	return s.Propagate(basis)
}

// rough upper bound of π(n) to size the basis
func estimatePrimes(n uint64) int {
	if n < 1000 {
		return 200
	}
	if n > 1<<32 {
		n = 1 << 32
	}
	return int(n / 5)
}
