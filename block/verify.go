// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"fmt"
	"unicode/utf8"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/numeral"
)

// VerifyChain - check the links and ranges of a complete planned set
//
// records may be given in any order
func VerifyChain(records []*Record) error {
	if 0 == len(records) {
		return nil
	}

	byIndex := make(map[uint64]*Record, len(records))
	tier := ""
	for _, r := range records {
		t, index, err := ParseName(r.Name())
		if nil != err {
			return err
		}
		if "" == tier {
			tier = t
		} else if t != tier {
			return chainError(r.Name(), "tier %q differs from %q", t, tier)
		}
		if _, ok := byIndex[index]; ok {
			return chainError(r.Name(), "duplicate index %d", index)
		}
		byIndex[index] = r
	}

	total := uint64(len(records))
	for i := uint64(0); i < total; i += 1 {
		r, ok := byIndex[i]
		if !ok {
			return chainError(Name(tier, i), "missing from chain")
		}

		previous := GenesisSentinel
		if i > 0 {
			previous = byIndex[i-1].Name()
		}
		if r.Chain.PreviousFile != previous {
			return chainError(r.Name(), "previous: %q expected: %q", r.Chain.PreviousFile, previous)
		}

		if i+1 == total {
			if nil != r.Chain.NextFile {
				return chainError(r.Name(), "last block has next: %q", *r.Chain.NextFile)
			}
		} else {
			next := byIndex[i+1]
			if nil == r.Chain.NextFile || *r.Chain.NextFile != next.Name() {
				return chainError(r.Name(), "next does not link to: %q", next.Name())
			}
			if r.Metadata.EndPrime+1 != next.Metadata.StartPrime {
				return chainError(r.Name(), "range ends at %d but next starts at %d", r.Metadata.EndPrime, next.Metadata.StartPrime)
			}
		}
	}
	return nil
}

func chainError(name string, format string, arguments ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", fault.InvalidChain, name, fmt.Sprintf(format, arguments...))
}

// Verify - check a complete record against its own stream
func Verify(codec *numeral.Codec, r *Record) error {
	if !r.IsComplete() {
		return fault.CorruptBlockRecord
	}
	stats, _, err := r.Statistics()
	if nil != err {
		return err
	}

	stream := r.Data.EncodedData
	m := &r.Metadata
	if nil == m.Sha256Hash || *m.Sha256Hash != Digest(stream) {
		return recordError(r.Name(), "sha256 mismatch")
	}
	if uint64(utf8.RuneCountInString(stream)) != stats.EncodedSize {
		return recordError(r.Name(), "encoded size mismatch")
	}

	count := uint64(0)
	p := stats.Start
	s := codec.NewScanner(stream)
	for s.Scan() {
		p += s.Value()
		count += 1
	}
	if nil != s.Err() {
		return fmt.Errorf("%w: %s: %s", fault.CorruptBlockRecord, r.Name(), s.Err())
	}
	tail, ok := s.Tail()
	if !ok || tail != stats.Trailing {
		return recordError(r.Name(), "tail mismatch")
	}
	if count != stats.TotalPrimes {
		return recordError(r.Name(), "prime count: %d  recorded: %d", count, stats.TotalPrimes)
	}
	if count > 0 && p != stats.LastPrime {
		return recordError(r.Name(), "last prime: %d  recorded: %d", p, stats.LastPrime)
	}
	if 0 == count {
		p -= 1
	}
	if p+tail != stats.End {
		return recordError(r.Name(), "stream covers up to %d not %d", p+tail, stats.End)
	}
	return nil
}

func recordError(name string, format string, arguments ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", fault.CorruptBlockRecord, name, fmt.Sprintf(format, arguments...))
}
