// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package journal

import (
	"encoding/json"

	"github.com/primegap/primegapd/fault"
)

// Document - the persisted journal
type Document struct {
	Status        Status          `json:"status"`
	SieveMetadata SieveMetadata   `json:"sieve_metadata"`
	Settings      Settings        `json:"settings"`
	SystemInfo    SystemInfo      `json:"system_info"`
	FileList      map[string]bool `json:"file_list"`
}

// Status - global progress
type Status struct {
	GenesisCompleted    bool     `json:"genesis_completed"`
	CurrentFile         *string  `json:"current_file"`
	FilesInProgress     []string `json:"files_in_progress"`
	TotalCompletedFiles uint64   `json:"total_completed_files"`
	Timestamp           string   `json:"timestamp"`
}

// SieveMetadata - per block cursors
type SieveMetadata struct {
	Genesis    Genesis      `json:"genesis"`
	InProgress []InProgress `json:"in_progress"`
}

// Genesis - progress of the first block
type Genesis struct {
	FileName           string  `json:"file_name"`
	Completed          bool    `json:"completed"`
	LastPrimeProcessed *uint64 `json:"last_prime_processed"`
}

// InProgress - one admitted block
type InProgress struct {
	FileName           string  `json:"file_name"`
	StartPrime         uint64  `json:"start_prime"`
	LastPrimeProcessed *uint64 `json:"last_prime_processed"`
}

// Settings - fixed for the lifetime of an archive except max_parallel_files
type Settings struct {
	MaxParallelFiles int    `json:"max_parallel_files"`
	BlockSize        uint64 `json:"block_size"`
	Base             int    `json:"base"`
}

// SystemInfo - provenance of the journal
type SystemInfo struct {
	Generator   string `json:"generator"`
	LastUpdated string `json:"last_updated"`
	Notes       string `json:"notes"`
}

// deep copy so a failed write can be rolled back
func (d *Document) clone() Document {
	c := *d

	c.Status.CurrentFile = copyString(d.Status.CurrentFile)
	c.Status.FilesInProgress = make([]string, len(d.Status.FilesInProgress))
	copy(c.Status.FilesInProgress, d.Status.FilesInProgress)

	c.SieveMetadata.Genesis.LastPrimeProcessed = copyUint64(d.SieveMetadata.Genesis.LastPrimeProcessed)
	c.SieveMetadata.InProgress = make([]InProgress, len(d.SieveMetadata.InProgress))
	for i, p := range d.SieveMetadata.InProgress {
		p.LastPrimeProcessed = copyUint64(p.LastPrimeProcessed)
		c.SieveMetadata.InProgress[i] = p
	}

	c.FileList = make(map[string]bool, len(d.FileList))
	for k, v := range d.FileList {
		c.FileList[k] = v
	}
	return c
}

// index of an in-progress block, -1 if absent
func (d *Document) find(name string) int {
	for i, p := range d.SieveMetadata.InProgress {
		if name == p.FileName {
			return i
		}
	}
	return -1
}

// keep the status list in step with the metadata
func (d *Document) syncInProgress() {
	names := make([]string, len(d.SieveMetadata.InProgress))
	for i, p := range d.SieveMetadata.InProgress {
		names[i] = p.FileName
	}
	d.Status.FilesInProgress = names
}

func (d *Document) marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

func unmarshal(buffer []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(buffer, d); nil != err {
		return nil, fault.CorruptJournal
	}
	if nil == d.FileList {
		d.FileList = make(map[string]bool)
	}
	if nil == d.SieveMetadata.InProgress {
		d.SieveMetadata.InProgress = []InProgress{}
	}

	if d.Settings.MaxParallelFiles <= 0 {
		return nil, fault.CorruptJournal
	}

	// the counter must agree with the flags
	completed := uint64(0)
	for _, done := range d.FileList {
		if done {
			completed += 1
		}
	}
	if completed != d.Status.TotalCompletedFiles {
		return nil, fault.CorruptJournal
	}

	// a block cannot be both in progress and complete
	seen := make(map[string]struct{}, len(d.SieveMetadata.InProgress))
	for _, p := range d.SieveMetadata.InProgress {
		if _, ok := seen[p.FileName]; ok || d.FileList[p.FileName] {
			return nil, fault.CorruptJournal
		}
		seen[p.FileName] = struct{}{}
	}
	d.syncInProgress()
	return d, nil
}

func copyString(s *string) *string {
	if nil == s {
		return nil
	}
	c := *s
	return &c
}

func copyUint64(n *uint64) *uint64 {
	if nil == n {
		return nil
	}
	c := *n
	return &c
}
