// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package numeral

import (
	"github.com/primegap/primegapd/fault"
)

// structural markers, never part of an alphabet
const (
	Escape     = ':'
	Terminator = '|'
	TailOpen   = '['
	TailClose  = ']'
)

// the symbol groups of the 174 symbol alphabet
const (
	numerals = "0123456789"
	upper    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower    = "abcdefghijklmnopqrstuvwxyz"
	extras   = "!@#$%^&*-_=+<,.>/?"
)

// soft hyphen is not printable so it is skipped in the Latin-1 block
const softHyphen = 0xad

// number of entries in the fast lookup table
const latinLimit = 0x100

// Alphabet - an ordered set of symbols, position is the digit value
type Alphabet struct {
	symbols []rune
	latin   [latinLimit]int16
	others  map[rune]uint64
}

// Base174 - the archive alphabet
var Base174 = mustAlphabet(base174Symbols())

func base174Symbols() string {
	s := []rune(numerals + upper + lower + extras)
	for r := rune(0xa1); r <= 0xff; r += 1 {
		if softHyphen == r {
			continue
		}
		s = append(s, r)
	}
	return string(s)
}

func mustAlphabet(symbols string) *Alphabet {
	a, err := NewAlphabet(symbols)
	if nil != err {
		panic(err)
	}
	return a
}

// NewAlphabet - create an alphabet from an ordered list of unique symbols
func NewAlphabet(symbols string) (*Alphabet, error) {
	a := &Alphabet{
		symbols: []rune(symbols),
		others:  make(map[rune]uint64),
	}
	if len(a.symbols) < 2 {
		return nil, fault.InvalidAlphabet
	}
	for i := range a.latin {
		a.latin[i] = -1
	}

	for i, r := range a.symbols {
		if isMarker(r) {
			return nil, fault.InvalidAlphabet
		}
		if _, ok := a.index(r); ok {
			return nil, fault.InvalidAlphabet
		}
		if r < latinLimit {
			a.latin[r] = int16(i)
		} else {
			a.others[r] = uint64(i)
		}
	}
	return a, nil
}

// Base - number of symbols
func (a *Alphabet) Base() int {
	return len(a.symbols)
}

// Symbol - the symbol for a digit value
func (a *Alphabet) Symbol(digit int) rune {
	return a.symbols[digit]
}

// String - all symbols in order
func (a *Alphabet) String() string {
	return string(a.symbols)
}

func (a *Alphabet) index(r rune) (uint64, bool) {
	if r >= 0 && r < latinLimit {
		i := a.latin[r]
		return uint64(i), i >= 0
	}
	i, ok := a.others[r]
	return i, ok
}

func isMarker(r rune) bool {
	switch r {
	case Escape, Terminator, TailOpen, TailClose:
		return true
	default:
		return false
	}
}
