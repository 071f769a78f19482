// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package numeral - self delimiting base-N numerals
//
// A value is written as a token of one or more alphabet symbols:
//
//   value < base           one symbol, no markers
//   two digits             ':' ++ d1 ++ d0
//   three or more digits   ':' ++ dN … d0 ++ '|'
//
// A stream is a concatenation of tokens optionally ended by a tail
// token '[' ++ token ++ ']' that carries the trailing run length of
// a block.  None of the four marker symbols ':', '|', '[' and ']'
// may appear in an alphabet.
//
// Decoding an escape looks for the next marker: a terminator
// belongs to the escape only if no other marker is between them,
// otherwise the escape is followed by exactly two digits.
package numeral
