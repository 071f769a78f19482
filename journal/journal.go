// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package journal

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/fault"
)

// defaults written into a fresh journal
const (
	DefaultMaxParallel = 3
	Generator          = "primegapd v1.0"
	Notes              = "Resumes from last checkpoint."

	timestampFormat = "2006-01-02T15:04:05"
)

// Config - values needed to create or check a journal
type Config struct {
	Genesis     string   // name of the genesis block
	Names       []string // every planned block name
	MaxParallel int      // zero keeps the persisted value
	BlockSize   uint64
	Base        int
}

// Journal - the in-memory mirror of the persisted document
//
// all methods are safe for concurrent use
type Journal struct {
	sync.Mutex

	log       *logger.L
	persister Persister
	document  Document
	names     []string            // all known blocks in order
	claimed   map[string]struct{} // in-progress blocks owned by a live worker
	now       func() time.Time
}

// Load - read the journal or create and persist a fresh one
func Load(persister Persister, config Config) (*Journal, error) {
	if config.MaxParallel < 0 {
		return nil, fault.InvalidMaxParallel
	}
	if 0 == config.BlockSize {
		return nil, fault.InvalidBlockSize
	}

	j := &Journal{
		log:       logger.New("journal"),
		persister: persister,
		claimed:   make(map[string]struct{}),
		now:       time.Now,
	}

	fresh := false
	buffer, err := persister.Read()
	switch {
	case nil == err:
		d, err := unmarshal(buffer)
		if nil != err {
			return nil, err
		}
		if d.Settings.BlockSize != config.BlockSize {
			j.log.Errorf("block size: %d  journal: %d", config.BlockSize, d.Settings.BlockSize)
			return nil, fault.BlockSizeMismatch
		}
		j.document = *d

	case fault.JournalNotFound == err:
		j.log.Info("journal not found, starting fresh")
		j.document = j.fresh(config)
		fresh = true

	default:
		return nil, err
	}

	changed := false
	d := &j.document
	for _, name := range config.Names {
		if _, ok := d.FileList[name]; !ok {
			d.FileList[name] = false
			changed = true
		}
	}
	if config.MaxParallel > 0 && config.MaxParallel != d.Settings.MaxParallelFiles {
		d.Settings.MaxParallelFiles = config.MaxParallel
		changed = true
	}
	if "" != config.Genesis && config.Genesis != d.SieveMetadata.Genesis.FileName {
		if !fresh {
			return nil, fault.CorruptJournal
		}
		d.SieveMetadata.Genesis.FileName = config.Genesis
	}

	j.names = make([]string, 0, len(d.FileList))
	for name := range d.FileList {
		j.names = append(j.names, name)
	}
	block.SortNames(j.names)

	if fresh || changed {
		if err := j.persist(); nil != err {
			return nil, err
		}
	}

	j.log.Infof("loaded: %d blocks  completed: %d  in progress: %d",
		len(d.FileList), d.Status.TotalCompletedFiles, len(d.SieveMetadata.InProgress))
	return j, nil
}

func (j *Journal) fresh(config Config) Document {
	maxParallel := config.MaxParallel
	if 0 == maxParallel {
		maxParallel = DefaultMaxParallel
	}
	timestamp := j.timestamp()
	return Document{
		Status: Status{
			FilesInProgress: []string{},
			Timestamp:       timestamp,
		},
		SieveMetadata: SieveMetadata{
			Genesis: Genesis{
				FileName: config.Genesis,
			},
			InProgress: []InProgress{},
		},
		Settings: Settings{
			MaxParallelFiles: maxParallel,
			BlockSize:        config.BlockSize,
			Base:             config.Base,
		},
		SystemInfo: SystemInfo{
			Generator:   Generator,
			LastUpdated: timestamp,
			Notes:       Notes,
		},
		FileList: make(map[string]bool),
	}
}

func (j *Journal) timestamp() string {
	return j.now().Format(timestampFormat)
}

// write the whole document
//
// must hold lock, except during Load
func (j *Journal) persist() error {
	timestamp := j.timestamp()
	j.document.Status.Timestamp = timestamp
	j.document.SystemInfo.LastUpdated = timestamp

	buffer, err := j.document.marshal()
	if nil != err {
		return err
	}
	return j.persister.Write(buffer)
}

// apply a change and persist it, restoring the previous state on any error
//
// must hold lock
func (j *Journal) update(f func(d *Document) error) error {
	previous := j.document.clone()
	err := f(&j.document)
	if nil == err {
		err = j.persist()
	}
	if nil != err {
		j.document = previous
		return err
	}
	return nil
}

// Begin - admit a block for processing
//
// an in-progress block left by an earlier run is taken over by the
// caller.  fault.CapacityExceeded and fault.GenesisNotCompleted are
// capacity errors: nothing changed, try again later.
func (j *Journal) Begin(name string, start uint64) error {
	j.Lock()
	defer j.Unlock()

	d := &j.document
	completed, planned := d.FileList[name]
	if !planned {
		return fault.BlockNotPlanned
	}
	if completed {
		return fault.AlreadyCompleted
	}
	if name == d.SieveMetadata.Genesis.FileName || !d.Status.GenesisCompleted {
		return fault.GenesisNotCompleted
	}

	if d.find(name) >= 0 {
		if _, ok := j.claimed[name]; ok {
			return fault.AlreadyInProgress
		}
		j.claimed[name] = struct{}{}
		j.log.Infof("resume: %s", name)
		return nil
	}

	if len(d.SieveMetadata.InProgress) >= d.Settings.MaxParallelFiles {
		return fault.CapacityExceeded
	}

	err := j.update(func(d *Document) error {
		d.SieveMetadata.InProgress = append(d.SieveMetadata.InProgress, InProgress{
			FileName:   name,
			StartPrime: start,
		})
		d.syncInProgress()
		current := name
		d.Status.CurrentFile = &current
		return nil
	})
	if nil != err {
		return err
	}
	j.claimed[name] = struct{}{}
	j.log.Infof("begin: %s  start: %d", name, start)
	return nil
}

// AdvanceCursor - record the last prime fully written for a block
func (j *Journal) AdvanceCursor(name string, cursor uint64) error {
	j.Lock()
	defer j.Unlock()

	return j.update(func(d *Document) error {
		i := d.find(name)
		if i < 0 {
			return fault.NotInProgress
		}
		d.SieveMetadata.InProgress[i].LastPrimeProcessed = &cursor
		return nil
	})
}

// Complete - move a block from in progress to completed
func (j *Journal) Complete(name string) error {
	j.Lock()
	defer j.Unlock()

	err := j.update(func(d *Document) error {
		i := d.find(name)
		if i < 0 {
			return fault.NotInProgress
		}
		p := d.SieveMetadata.InProgress
		d.SieveMetadata.InProgress = append(p[:i:i], p[i+1:]...)
		d.syncInProgress()
		d.Status.TotalCompletedFiles += 1
		d.FileList[name] = true
		return nil
	})
	if nil != err {
		return err
	}
	delete(j.claimed, name)
	j.log.Infof("complete: %s  total: %d", name, j.document.Status.TotalCompletedFiles)
	return nil
}

// MarkGenesis - record genesis progress
//
// with completed false only the cursor is updated
func (j *Journal) MarkGenesis(completed bool, lastPrime uint64) error {
	j.Lock()
	defer j.Unlock()

	return j.update(func(d *Document) error {
		g := &d.SieveMetadata.Genesis
		if g.Completed {
			return fault.AlreadyCompleted
		}
		if _, ok := d.FileList[g.FileName]; !ok {
			return fault.GenesisNotPlanned
		}
		g.LastPrimeProcessed = &lastPrime
		name := g.FileName
		d.Status.CurrentFile = &name
		if completed {
			g.Completed = true
			d.Status.GenesisCompleted = true
			d.Status.TotalCompletedFiles += 1
			d.FileList[name] = true
			j.log.Infof("genesis complete: %s  last prime: %d", name, lastPrime)
		}
		return nil
	})
}

// SetMaxParallel - change the admission bound
//
// lowering it below the current in-progress count only stops new admissions
func (j *Journal) SetMaxParallel(n int) error {
	if n < 1 {
		return fault.InvalidMaxParallel
	}

	j.Lock()
	defer j.Unlock()

	if n == j.document.Settings.MaxParallelFiles {
		return nil
	}
	err := j.update(func(d *Document) error {
		d.Settings.MaxParallelFiles = n
		return nil
	})
	if nil == err {
		j.log.Infof("max parallel files: %d", n)
	}
	return err
}

// MaxParallel - current admission bound
func (j *Journal) MaxParallel() int {
	j.Lock()
	defer j.Unlock()
	return j.document.Settings.MaxParallelFiles
}

// Release - give up ownership of an in-progress block without completing it
//
// the block stays in progress and can be resumed by a later Begin
func (j *Journal) Release(name string) {
	j.Lock()
	delete(j.claimed, name)
	j.Unlock()
}

// Next - the block a worker should take
//
// in-progress blocks not owned by a worker come first, then the
// first block that was never started
func (j *Journal) Next() (string, error) {
	j.Lock()
	defer j.Unlock()

	d := &j.document
	if !d.Status.GenesisCompleted {
		return "", fault.GenesisNotCompleted
	}
	for _, p := range d.SieveMetadata.InProgress {
		if _, ok := j.claimed[p.FileName]; !ok {
			return p.FileName, nil
		}
	}
	if len(d.SieveMetadata.InProgress) >= d.Settings.MaxParallelFiles {
		return "", fault.CapacityExceeded
	}
	for _, name := range j.names {
		if !d.FileList[name] && d.find(name) < 0 {
			return name, nil
		}
	}
	return "", fault.NoBlockAvailable
}

// Remaining - blocks not yet completed
func (j *Journal) Remaining() int {
	j.Lock()
	defer j.Unlock()

	n := 0
	for _, completed := range j.document.FileList {
		if !completed {
			n += 1
		}
	}
	return n
}

// Resumable - in-progress blocks not owned by a worker
func (j *Journal) Resumable() []InProgress {
	j.Lock()
	defer j.Unlock()

	result := []InProgress{}
	for _, p := range j.document.SieveMetadata.InProgress {
		if _, ok := j.claimed[p.FileName]; !ok {
			p.LastPrimeProcessed = copyUint64(p.LastPrimeProcessed)
			result = append(result, p)
		}
	}
	return result
}

// Cursor - last prime recorded for an in-progress block
func (j *Journal) Cursor(name string) (uint64, bool, error) {
	j.Lock()
	defer j.Unlock()

	i := j.document.find(name)
	if i < 0 {
		return 0, false, fault.NotInProgress
	}
	c := j.document.SieveMetadata.InProgress[i].LastPrimeProcessed
	if nil == c {
		return 0, false, nil
	}
	return *c, true, nil
}

// GenesisState - name, completion and cursor of the genesis block
func (j *Journal) GenesisState() (string, bool, *uint64) {
	j.Lock()
	defer j.Unlock()

	g := j.document.SieveMetadata.Genesis
	return g.FileName, g.Completed, copyUint64(g.LastPrimeProcessed)
}

// Snapshot - deep copy of the current document
func (j *Journal) Snapshot() Document {
	j.Lock()
	defer j.Unlock()
	return j.document.clone()
}
