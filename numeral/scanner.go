// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package numeral

import (
	"strings"
	"unicode/utf8"

	"github.com/primegap/primegapd/fault"
)

const markers = ":|[]"

// Scanner - left to right reader of a token stream
//
// use like bufio.Scanner:
//
//   s := codec.NewScanner(stream)
//   for s.Scan() {
//       v := s.Value()
//   }
//   if nil != s.Err() { … }
//   tail, ok := s.Tail()
type Scanner struct {
	codec    *Codec
	stream   string
	position int // byte offset of the next token
	marker   int // byte offset of a marker at or after the last search, -1 if unknown
	value    uint64
	count    uint64
	tail     uint64
	hasTail  bool
	done     bool
	err      error
}

// NewScanner - start scanning a stream
func (c *Codec) NewScanner(stream string) *Scanner {
	return &Scanner{
		codec:  c,
		stream: stream,
		marker: -1,
	}
}

// Scan - advance to the next value token
//
// returns false at the end of the stream, at the tail token or on error
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	if s.position >= len(s.stream) {
		s.done = true
		return false
	}

	r, size := utf8.DecodeRuneInString(s.stream[s.position:])
	switch r {

	case TailOpen:
		s.scanTail()
		return false

	case Escape:
		payload, next, err := s.escapedPayload(s.position + size)
		if nil != err {
			return s.fail(err)
		}
		value, err := s.codec.Decode(payload)
		if nil != err {
			return s.fail(err)
		}
		s.value = value
		s.position = next

	case Terminator, TailClose:
		return s.fail(fault.CorruptStream)

	default:
		d, ok := s.codec.alphabet.index(r)
		if !ok {
			return s.fail(fault.InvalidSymbol)
		}
		s.value = d
		s.position += size
	}

	s.count += 1
	return true
}

// Value - the most recently scanned value
func (s *Scanner) Value() uint64 {
	return s.value
}

// Count - number of values scanned so far
func (s *Scanner) Count() uint64 {
	return s.count
}

// Err - first error encountered
func (s *Scanner) Err() error {
	return s.err
}

// Tail - run length from the tail token, false if none was read
func (s *Scanner) Tail() (uint64, bool) {
	return s.tail, s.hasTail
}

func (s *Scanner) fail(err error) bool {
	s.err = err
	s.done = true
	return false
}

// determine the digits following an escape at start-1
//
// returns the payload and the offset after the token
func (s *Scanner) escapedPayload(start int) (string, int, error) {
	m := s.nextMarker(start)
	if m < len(s.stream) && Terminator == s.stream[m] {
		payload := s.stream[start:m]
		if utf8.RuneCountInString(payload) < 3 {
			return "", 0, fault.CorruptStream
		}
		return payload, m + 1, nil
	}

	end := start
	for i := 0; i < 2; i += 1 {
		if end >= m {
			return "", 0, fault.UnterminatedEscapeToken
		}
		_, size := utf8.DecodeRuneInString(s.stream[end:])
		end += size
	}
	return s.stream[start:end], end, nil
}

// offset of the first marker at or after start, len(stream) if none
func (s *Scanner) nextMarker(start int) int {
	if s.marker >= start {
		return s.marker
	}
	i := strings.IndexAny(s.stream[start:], markers)
	if i < 0 {
		s.marker = len(s.stream)
	} else {
		s.marker = start + i
	}
	return s.marker
}

// the tail is the last token, nothing may follow it
func (s *Scanner) scanTail() {
	s.done = true
	start := s.position + 1
	end := strings.IndexByte(s.stream[start:], TailClose)
	if end < 0 {
		s.err = fault.UnterminatedTailToken
		return
	}
	end += start

	value, err := s.codec.Decode(StripMarkers(s.stream[start:end]))
	if nil != err {
		s.err = err
		return
	}
	if end+1 != len(s.stream) {
		s.err = fault.CorruptStream
		return
	}
	s.tail = value
	s.hasTail = true
	s.position = end + 1
}

// DecodeStream - all values and the tail of a complete stream
func (c *Codec) DecodeStream(stream string) ([]uint64, uint64, bool, error) {
	values := make([]uint64, 0, len(stream))
	s := c.NewScanner(stream)
	for s.Scan() {
		values = append(values, s.Value())
	}
	if nil != s.Err() {
		return nil, 0, false, s.Err()
	}
	tail, ok := s.Tail()
	return values, tail, ok, nil
}
