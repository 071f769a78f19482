// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk LevelDB data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++   = concatenation of byte data
// 3. name = block file name e.g. "2_32-0001.json"
//
// Blocks:
//
//   B ++ name                  - block record
//                                data: zstd(JSON block record)
//
// Journal:
//
//   J ++ "journal"             - progress journal document
//                                data: JSON journal document
//
// Testing:
//
//   Z ++ key                   - testing data
package storage
