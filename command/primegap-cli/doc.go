// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// primegap-cli - inspect a prime gap archive
//
// reads block records and the journal written by primegapd, decodes
// gap streams and checks their integrity.  Nothing is modified.
package main
