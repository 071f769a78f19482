// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"math"
	"time"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/numeral"
)

// system information written into every planned record
const (
	Generator = "primegapd v1.0"
	Author    = "Prime Saver"
	Notes     = "This is for saving the primes up to as far as space will allow."
)

// Plan - blank chained records partitioning [0, total*size)
//
// the result depends only on the arguments, the codec supplies the base
func Plan(codec *numeral.Codec, tier string, total uint64, blockSize uint64, now time.Time) ([]*Record, error) {
	if 0 == total {
		return nil, fault.InvalidBlockCount
	}
	if 0 == blockSize {
		return nil, fault.InvalidBlockSize
	}
	if total > math.MaxUint64/blockSize {
		return nil, fault.InvalidBlockCount
	}

	chunkSize := uint64(ChunkSize)
	if blockSize < chunkSize {
		chunkSize = blockSize
	}
	chunkCount := (blockSize + chunkSize - 1) / chunkSize
	created := now.UTC().Format(time.RFC3339)

	records := make([]*Record, total)
	for i := uint64(0); i < total; i += 1 {

		previous := GenesisSentinel
		if i > 0 {
			previous = Name(tier, i-1)
		}
		var next *string
		if i+1 < total {
			n := Name(tier, i+1)
			next = &n
		}

		records[i] = &Record{
			FileVersion:    FileVersion,
			Base:           codec.Base(),
			ConversionType: ConversionType,
			Chain: Chain{
				PreviousFile: previous,
				CurrentFile:  Name(tier, i),
				NextFile:     next,
			},
			Metadata: Metadata{
				StartPrime:   i * blockSize,
				EndPrime:     (i+1)*blockSize - 1,
				BitArraySize: blockSize,
			},
			SystemInfo: SystemInfo{
				Generator:    Generator,
				CreationDate: created,
				Author:       Author,
				Notes:        Notes,
			},
			Data: Data{
				Structure: Structure{
					ChunkSize:  chunkSize,
					ChunkCount: chunkCount,
				},
			},
		}
	}
	return records, nil
}
