// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"encoding/json"

	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/sieve"
)

// record constants
const (
	FileVersion    = "1.0"
	ConversionType = "prime gaps"
	ChunkSize      = 8_388_608
)

// Record - one persisted block
type Record struct {
	FileVersion    string     `json:"file_version"`
	Base           int        `json:"base"`
	ConversionType string     `json:"conversion_type"`
	Chain          Chain      `json:"chain"`
	Metadata       Metadata   `json:"metadata"`
	SystemInfo     SystemInfo `json:"system_info"`
	Data           Data       `json:"data"`
}

// Chain - links to the neighbouring blocks
type Chain struct {
	PreviousFile string  `json:"previous_file"`
	CurrentFile  string  `json:"current_file"`
	NextFile     *string `json:"next_file"`
}

// Metadata - range and sieve statistics
//
// statistics are null until the block has been sieved, a partially
// processed block has statistics but a null trailing_zeros
type Metadata struct {
	StartPrime          uint64   `json:"start_prime"`
	EndPrime            uint64   `json:"end_prime"`
	ArrayStartValue     *uint64  `json:"array_start_value"`
	ArrayEndValue       *uint64  `json:"array_end_value"`
	FirstPrime          *uint64  `json:"first_prime"`
	LastPrime           *uint64  `json:"last_prime"`
	TrailingZeros       *uint64  `json:"trailing_zeros"`
	TotalPrimes         *uint64  `json:"total_primes"`
	TotalGaps           *uint64  `json:"total_gaps"`
	MaxGap              *uint64  `json:"max_gap"`
	StartMaxGapLocation *uint64  `json:"start_max_gap_location"`
	EndMaxGapLocation   *uint64  `json:"end_max_gap_location"`
	MinGap              *uint64  `json:"min_gap"`
	AverageGap          *float64 `json:"average_gap"`
	EncodedDataSize     *uint64  `json:"encoded_data_size"`
	CompressionSize     *uint64  `json:"compression_size"`
	Sha256Hash          *string  `json:"sha256_hash"`
	BitArraySize        uint64   `json:"bit_array_size"`
}

// SystemInfo - provenance of the record
type SystemInfo struct {
	Generator    string `json:"generator"`
	CreationDate string `json:"creation_date"`
	Author       string `json:"author"`
	Notes        string `json:"notes"`
}

// Data - the encoded gap stream
type Data struct {
	Structure   Structure `json:"structure"`
	EncodedData string    `json:"encoded_data"`
}

// Structure - chunking of the bit array
type Structure struct {
	ChunkSize  uint64 `json:"chunk_size"`
	ChunkCount uint64 `json:"chunk_count"`
}

// Name - file name of this block
func (r *Record) Name() string {
	return r.Chain.CurrentFile
}

// Index - sequence number of this block
func (r *Record) Index() (uint64, error) {
	_, index, err := ParseName(r.Chain.CurrentFile)
	return index, err
}

// IsBlank - nothing has been written to the block
func (r *Record) IsBlank() bool {
	return nil == r.Metadata.TotalPrimes
}

// IsComplete - the whole block has been encoded
func (r *Record) IsComplete() bool {
	return nil != r.Metadata.TrailingZeros
}

// Apply - fill in statistics and stream from an encoder
//
// used both for partial checkpoints and for the final record, a
// partial record carries no digest or compressed size
func (r *Record) Apply(stats sieve.Statistics, stream string) error {
	m := &r.Metadata
	if stats.Start != m.StartPrime || stats.End != m.EndPrime {
		return fault.InvalidBlockRange
	}

	// digest and compressed size describe the finished stream only
	var size *uint64
	var digest *string
	if stats.Finished {
		n, err := CompressedSize(stream)
		if nil != err {
			return err
		}
		d := Digest(stream)
		size = uint64Pointer(uint64(n))
		digest = &d
	}

	m.ArrayStartValue = uint64Pointer(0)
	m.ArrayEndValue = uint64Pointer(stats.End - stats.Start)
	m.TotalPrimes = uint64Pointer(stats.TotalPrimes)
	m.TotalGaps = uint64Pointer(stats.TotalGaps())
	average := stats.AverageGap()
	m.AverageGap = &average
	m.EncodedDataSize = uint64Pointer(stats.EncodedSize)

	m.CompressionSize = size
	m.Sha256Hash = digest

	m.FirstPrime = nil
	m.LastPrime = nil
	if stats.TotalPrimes > 0 {
		m.FirstPrime = uint64Pointer(stats.FirstPrime)
		m.LastPrime = uint64Pointer(stats.LastPrime)
	}

	m.MaxGap = nil
	m.StartMaxGapLocation = nil
	m.EndMaxGapLocation = nil
	m.MinGap = nil
	if stats.TotalPrimes > 1 {
		m.MaxGap = uint64Pointer(stats.MaxGap)
		m.StartMaxGapLocation = uint64Pointer(stats.MaxGapStart)
		m.EndMaxGapLocation = uint64Pointer(stats.MaxGapEnd)
		m.MinGap = uint64Pointer(stats.MinGap)
	}

	m.TrailingZeros = nil
	if stats.Finished {
		m.TrailingZeros = uint64Pointer(stats.Trailing)
	}

	r.Data.EncodedData = stream
	return nil
}

// Statistics - rebuild encoder statistics from the metadata
//
// false if the block has not been started
func (r *Record) Statistics() (sieve.Statistics, bool, error) {
	m := &r.Metadata
	stats := sieve.Statistics{
		Start: m.StartPrime,
		End:   m.EndPrime,
	}
	if nil == m.TotalPrimes {
		return stats, false, nil
	}
	if nil == m.EncodedDataSize {
		return stats, false, fault.CorruptBlockRecord
	}

	stats.TotalPrimes = *m.TotalPrimes
	stats.EncodedSize = *m.EncodedDataSize
	if stats.TotalPrimes > 0 {
		if nil == m.FirstPrime || nil == m.LastPrime {
			return stats, false, fault.CorruptBlockRecord
		}
		stats.FirstPrime = *m.FirstPrime
		stats.LastPrime = *m.LastPrime
	}
	if stats.TotalPrimes > 1 {
		if nil == m.MaxGap || nil == m.StartMaxGapLocation || nil == m.EndMaxGapLocation || nil == m.MinGap {
			return stats, false, fault.CorruptBlockRecord
		}
		stats.MaxGap = *m.MaxGap
		stats.MaxGapStart = *m.StartMaxGapLocation
		stats.MaxGapEnd = *m.EndMaxGapLocation
		stats.MinGap = *m.MinGap
	}
	if nil != m.TrailingZeros {
		stats.Trailing = *m.TrailingZeros
		stats.Finished = true
	}
	return stats, true, nil
}

// Reset - return the record to its blank state
func (r *Record) Reset() {
	m := &r.Metadata
	*m = Metadata{
		StartPrime:   m.StartPrime,
		EndPrime:     m.EndPrime,
		BitArraySize: m.BitArraySize,
	}
	r.Data.EncodedData = ""
}

// Marshal - JSON form of the record
func (r *Record) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "    ")
}

// Unmarshal - decode and validate a JSON record
func Unmarshal(buffer []byte) (*Record, error) {
	r := &Record{}
	err := json.Unmarshal(buffer, r)
	if nil != err {
		return nil, fault.CorruptBlockRecord
	}
	if "" == r.Chain.CurrentFile || r.Metadata.EndPrime < r.Metadata.StartPrime {
		return nil, fault.CorruptBlockRecord
	}
	return r, nil
}

func uint64Pointer(n uint64) *uint64 {
	return &n
}
