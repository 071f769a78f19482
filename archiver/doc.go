// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package archiver drives planned blocks through the sieve
//
// the genesis block is sieved first, on its own.  Then a pool of
// workers repeatedly asks the journal for the next block, sieves it
// with the primes of the genesis block, encodes its gaps and saves
// the record.  Every checkpoint interval the partial record is saved
// and the journal cursor advanced, so a stopped run resumes where it
// left off.
package archiver
