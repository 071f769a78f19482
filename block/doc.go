// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block - the archive of block records
//
// The domain is partitioned into equal size blocks.  Every block is
// planned up front as a blank record, chained to its neighbours by
// file name, and later filled in exactly once with the gap stream
// and statistics produced by the sieve.
//
// Names are: <tier>-<index>.json  e.g. "2_32-0007.json" for the
// eighth block of 2^32 numbers.  The first block's previous pointer
// is the sentinel "genesis" and the last block has no next pointer.
package block
