// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package journal - persistent progress of the archive
//
// The journal records which blocks are being processed, how far each
// has got, and which are complete.  It bounds the number of blocks in
// progress at once and holds back every block until the genesis block
// is complete.
//
// Every change is applied to an in-memory document which is then
// written out whole.  If the write fails the in-memory document is
// restored, so the journal always matches either the previous or the
// new persisted document.
package journal
