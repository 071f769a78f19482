// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// primegapd - build the prime gap archive
//
// reads a Lua configuration file, plans the blank block records,
// then sieves the blocks with a pool of workers until every block is
// complete or a signal is received.  Progress is kept in a journal so
// a stopped run continues from the last checkpoint.
//
// commands:
//
//	run          process blocks (the default)
//	plan         create any missing block records and the journal, then exit
//	status       print a summary of the journal
//	config-test  print the parsed configuration
//	version      print the program version
package main
