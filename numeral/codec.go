// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package numeral

import (
	"math"
	"strings"

	"github.com/primegap/primegapd/fault"
)

// enough digits for a 64 bit value in any base >= 2
const maximumDigits = 64

// Codec - encode and decode tokens in one alphabet
type Codec struct {
	alphabet *Alphabet
	base     uint64
}

// Default - codec for the 174 symbol alphabet
var Default = New(Base174)

// New - create a codec for an alphabet
func New(alphabet *Alphabet) *Codec {
	return &Codec{
		alphabet: alphabet,
		base:     uint64(alphabet.Base()),
	}
}

// Alphabet - the alphabet in use
func (c *Codec) Alphabet() *Alphabet {
	return c.alphabet
}

// Base - numeric base of the codec
func (c *Codec) Base() int {
	return int(c.base)
}

// Encode - convert a value to its token
func (c *Codec) Encode(n uint64) string {
	b := strings.Builder{}
	c.AppendToken(&b, n)
	return b.String()
}

// EncodeSigned - convert a signed value, negatives are rejected
func (c *Codec) EncodeSigned(n int64) (string, error) {
	if n < 0 {
		return "", fault.NegativeValue
	}
	return c.Encode(uint64(n)), nil
}

// AppendToken - write the token for a value
func (c *Codec) AppendToken(b *strings.Builder, n uint64) {
	if n < c.base {
		b.WriteRune(c.alphabet.symbols[n])
		return
	}

	digits := [maximumDigits]rune{}
	i := len(digits)
	for n > 0 {
		i -= 1
		digits[i] = c.alphabet.symbols[n%c.base]
		n /= c.base
	}

	b.WriteRune(Escape)
	for _, r := range digits[i:] {
		b.WriteRune(r)
	}
	if len(digits)-i > 2 {
		b.WriteRune(Terminator)
	}
}

// AppendTail - write the end of stream token carrying a run length
func (c *Codec) AppendTail(b *strings.Builder, n uint64) {
	b.WriteRune(TailOpen)
	c.AppendToken(b, n)
	b.WriteRune(TailClose)
}

// Decode - convert digit symbols (markers already removed) to a value
//
// the first symbol is the most significant
func (c *Codec) Decode(payload string) (uint64, error) {
	if "" == payload {
		return 0, fault.EmptyPayload
	}
	result := uint64(0)
	for _, r := range payload {
		d, ok := c.alphabet.index(r)
		if !ok {
			return 0, fault.InvalidSymbol
		}
		if result > (math.MaxUint64-d)/c.base {
			return 0, fault.ValueOverflow
		}
		result = result*c.base + d
	}
	return result, nil
}

// Compare - order two payloads by their decoded values
func (c *Codec) Compare(a string, b string) (int, error) {
	x, err := c.Decode(StripMarkers(a))
	if nil != err {
		return 0, err
	}
	y, err := c.Decode(StripMarkers(b))
	if nil != err {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

// StripMarkers - remove all structural markers from a token
func StripMarkers(token string) string {
	return strings.Map(func(r rune) rune {
		if isMarker(r) {
			return -1
		}
		return r
	}, token)
}

// TokenLength - number of symbols in the token for a value
func (c *Codec) TokenLength(n uint64) int {
	if n < c.base {
		return 1
	}
	digits := 0
	for n > 0 {
		digits += 1
		n /= c.base
	}
	if digits > 2 {
		return digits + 2
	}
	return digits + 1
}
