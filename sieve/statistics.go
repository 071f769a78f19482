// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sieve

import (
	"strings"
	"unicode/utf8"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/numeral"
)

// Statistics - summary of the primes in one block
//
// gap extrema only consider gaps between two primes of the block,
// the distance from the block start to the first prime is not a gap
type Statistics struct {
	Start       uint64 // first number of the block
	End         uint64 // last number of the block, inclusive
	TotalPrimes uint64
	FirstPrime  uint64
	LastPrime   uint64
	MaxGap      uint64
	MaxGapStart uint64 // prime before the maximum gap
	MaxGapEnd   uint64 // prime after the maximum gap
	MinGap      uint64
	Trailing    uint64 // numbers after the last prime
	EncodedSize uint64 // symbols in the stream
	Finished    bool   // tail token written
}

// TotalGaps - number of gaps between consecutive primes
func (s Statistics) TotalGaps() uint64 {
	if s.TotalPrimes < 2 {
		return 0
	}
	return s.TotalPrimes - 1
}

// AverageGap - mean gap between consecutive primes
func (s Statistics) AverageGap() float64 {
	n := s.TotalGaps()
	if 0 == n {
		return 0
	}
	return float64(s.LastPrime-s.FirstPrime) / float64(n)
}

// Encoder - accumulates the gap stream and statistics of a block
//
// each block owns its encoder, nothing is shared between blocks
type Encoder struct {
	codec  *numeral.Codec
	stats  Statistics
	anchor uint64
	buffer strings.Builder
}

// NewEncoder - start an empty stream for the range start..end
func NewEncoder(codec *numeral.Codec, start uint64, end uint64) (*Encoder, error) {
	if end < start {
		return nil, fault.InvalidBlockRange
	}
	return &Encoder{
		codec: codec,
		stats: Statistics{
			Start: start,
			End:   end,
		},
		anchor: start,
	}, nil
}

// ResumeEncoder - continue a stream from a checkpoint
//
// the stream prefix must hold exactly stats.TotalPrimes tokens and no tail
func ResumeEncoder(codec *numeral.Codec, stats Statistics, prefix string) (*Encoder, error) {
	if stats.End < stats.Start {
		return nil, fault.InvalidBlockRange
	}
	if stats.Finished || 0 == stats.TotalPrimes {
		return nil, fault.CorruptBlockRecord
	}
	if stats.LastPrime < stats.Start || stats.LastPrime > stats.End {
		return nil, fault.CorruptBlockRecord
	}
	if uint64(utf8.RuneCountInString(prefix)) != stats.EncodedSize {
		return nil, fault.CorruptBlockRecord
	}

	e := &Encoder{
		codec:  codec,
		stats:  stats,
		anchor: stats.LastPrime,
	}
	e.buffer.Grow(len(prefix))
	e.buffer.WriteString(prefix)
	return e, nil
}

// Add - append the next prime, primes must be strictly increasing
func (e *Encoder) Add(prime uint64) {
	gap := prime - e.anchor

	s := &e.stats
	if 0 == s.TotalPrimes {
		s.FirstPrime = prime
	} else {
		if gap > s.MaxGap {
			s.MaxGap = gap
			s.MaxGapStart = e.anchor
			s.MaxGapEnd = prime
		}
		if 1 == s.TotalPrimes || gap < s.MinGap {
			s.MinGap = gap
		}
	}

	e.codec.AppendToken(&e.buffer, gap)
	s.EncodedSize += uint64(e.codec.TokenLength(gap))
	s.TotalPrimes += 1
	s.LastPrime = prime
	e.anchor = prime
}

// Finish - write the tail token, no more primes may be added
func (e *Encoder) Finish() {
	s := &e.stats
	if s.Finished {
		return
	}
	if 0 == s.TotalPrimes {
		s.Trailing = s.End - s.Start + 1
	} else {
		s.Trailing = s.End - s.LastPrime
	}
	e.codec.AppendTail(&e.buffer, s.Trailing)
	s.EncodedSize += uint64(e.codec.TokenLength(s.Trailing)) + 2
	s.Finished = true
}

// Cursor - last prime added, false if none yet
func (e *Encoder) Cursor() (uint64, bool) {
	return e.stats.LastPrime, e.stats.TotalPrimes > 0
}

// Statistics - current summary
func (e *Encoder) Statistics() Statistics {
	return e.stats
}

// Stream - the encoded stream so far
func (e *Encoder) Stream() string {
	return e.buffer.String()
}
