// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sieve

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/primegap/primegapd/fault"
)

// State - position of a block in its life cycle
type State int

// all block states in order
const (
	Blank State = iota
	Admitted
	Sieved
	Encoded
	Complete
)

func (s State) String() string {
	switch s {
	case Blank:
		return "blank"
	case Admitted:
		return "admitted"
	case Sieved:
		return "sieved"
	case Encoded:
		return "encoded"
	case Complete:
		return "complete"
	default:
		return "*unknown*"
	}
}

// Checkpoint - called at a gap boundary with the last encoded prime
//
// returning an error stops the scan, the encoder stays valid up to
// and including that prime
type Checkpoint func(cursor uint64) error

// Options - checkpoint control for long scans
type Options struct {
	Interval   uint64 // primes between checkpoints, zero disables
	Checkpoint Checkpoint
}

// count primes and call the checkpoint when due
type ticker struct {
	options Options
	count   uint64
}

func (t *ticker) tick(cursor uint64) error {
	if 0 == t.options.Interval || nil == t.options.Checkpoint {
		return nil
	}
	t.count += 1
	if t.count < t.options.Interval {
		return nil
	}
	t.count = 0
	return t.options.Checkpoint(cursor)
}

// Segment - the bit vector of one block
type Segment struct {
	start uint64
	end   uint64
	bits  *bitset.BitSet
	state State
}

// NewSegment - allocate a segment for start..end with every number a candidate
func NewSegment(start uint64, end uint64) (*Segment, error) {
	if end < start {
		return nil, fault.InvalidBlockRange
	}
	length := uint(end - start + 1)
	if 0 == length {
		return nil, fault.InvalidBlockRange
	}
	bits := bitset.New(length)
	bits.FlipRange(0, length)

	// 0 and 1 are not prime
	for n := start; n < 2 && n <= end; n += 1 {
		bits.Clear(uint(n - start))
	}

	return &Segment{
		start: start,
		end:   end,
		bits:  bits,
		state: Admitted,
	}, nil
}

// Start - first number of the segment
func (s *Segment) Start() uint64 {
	return s.start
}

// End - last number of the segment
func (s *Segment) End() uint64 {
	return s.end
}

// State - current life cycle state
func (s *Segment) State() State {
	return s.state
}

// IsPrime - primality of a number inside a sieved segment
func (s *Segment) IsPrime(n uint64) bool {
	if s.state < Sieved || nil == s.bits || n < s.start || n > s.end {
		return false
	}
	return s.bits.Test(uint(n - s.start))
}

// Primes - count of primes in a sieved segment
func (s *Segment) Primes() uint64 {
	if s.state < Sieved || nil == s.bits {
		return 0
	}
	return uint64(s.bits.Count())
}

// Genesis - sieve from scratch and encode in a single left to right pass
//
// the multiples of each prime up to √end are cleared from its square
// onward as soon as the scan reaches it.  A resumed encoder skips
// encoding for primes up to its cursor but still clears their multiples.
func (s *Segment) Genesis(encoder *Encoder, options Options) error {
	if 0 != s.start {
		return fault.NotGenesisSegment
	}
	if Admitted != s.state {
		return fault.WrongSegmentState
	}

	root := isqrt(s.end)
	cursor, resuming := encoder.Cursor()
	t := ticker{options: options}

	length := uint(s.end + 1)
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		p := uint64(i)
		if p <= root {
			for m := i * i; m < length; m += i {
				s.bits.Clear(m)
			}
		}
		if resuming && p <= cursor {
			continue
		}
		encoder.Add(p)
		if err := t.tick(p); nil != err {
			return err
		}
	}
	encoder.Finish()
	s.state = Encoded
	return nil
}

// Propagate - clear the multiples of every basis prime up to √end
//
// the basis must hold every prime from 2 to √end
func (s *Segment) Propagate(basis *Basis) error {
	if Admitted != s.state {
		return fault.WrongSegmentState
	}
	root := isqrt(s.end)
	if basis.From > 2 || basis.Covered < root {
		return fault.BasisInsufficient
	}

	length := uint(s.end - s.start + 1)
	for _, p := range basis.Primes {
		if p > root {
			break
		}
		first := s.start + Align(s.start, p)
		if square := p * p; first < square {
			first = square
		}
		if first > s.end {
			continue
		}
		step := uint(p)
		for i := uint(first - s.start); i < length; i += step {
			s.bits.Clear(i)
		}
	}
	s.state = Sieved
	return nil
}

// Derive - encode the primes of a sieved segment
//
// a resumed encoder continues after its cursor
func (s *Segment) Derive(encoder *Encoder, options Options) error {
	if Sieved != s.state {
		return fault.SegmentNotSieved
	}

	from := uint(0)
	if cursor, ok := encoder.Cursor(); ok {
		if cursor < s.start || cursor > s.end {
			return fault.InvalidBlockRange
		}
		from = uint(cursor-s.start) + 1
	}

	t := ticker{options: options}
	for i, ok := s.bits.NextSet(from); ok; i, ok = s.bits.NextSet(i + 1) {
		p := s.start + uint64(i)
		encoder.Add(p)
		if err := t.tick(p); nil != err {
			return err
		}
	}
	encoder.Finish()
	s.state = Encoded
	return nil
}

// Complete - the block record is persisted, release the bit vector
func (s *Segment) Complete() error {
	if Encoded != s.state {
		return fault.WrongSegmentState
	}
	s.state = Complete
	s.Release()
	return nil
}

// Release - drop the bit vector
func (s *Segment) Release() {
	s.bits = nil
}
