// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/archiver"
	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/journal"
	"github.com/primegap/primegapd/numeral"
)

// the planned store and its journal
type archive struct {
	store   block.Store
	journal *journal.Journal
	created int
}

// create any missing block records, then load the journal
//
// the LevelDB backend needs storage to be initialised first
func openArchive(c *Configuration) (*archive, error) {
	store, err := block.NewStore(c.Database.Backend, c.Database.Directory, c.Plan.Tier)
	if nil != err {
		return nil, err
	}

	records, err := block.Plan(numeral.Default, c.Plan.Tier, c.Plan.TotalBlocks, c.Plan.BlockSize, time.Now())
	if nil != err {
		return nil, err
	}
	created, err := store.Create(records)
	if nil != err {
		return nil, err
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name()
	}

	var persister journal.Persister
	switch c.Database.Backend {
	case block.LevelDBBackend:
		persister, err = journal.NewLevelDBPersister()
		if nil != err {
			return nil, err
		}
	default:
		persister = journal.NewFilePersister(c.Journal.File)
	}

	j, err := journal.Load(persister, journal.Config{
		Genesis:     names[0],
		Names:       names,
		MaxParallel: c.Journal.MaxParallelFiles,
		BlockSize:   c.Plan.BlockSize,
		Base:        numeral.Default.Base(),
	})
	if nil != err {
		return nil, err
	}

	return &archive{
		store:   store,
		journal: j,
		created: created,
	}, nil
}

// runs the archiver as a background process
type archiveProcess struct {
	log      *logger.L
	archiver *archiver.Archiver
	done     chan error
}

func newArchiveProcess(a *archiver.Archiver) *archiveProcess {
	return &archiveProcess{
		log:      logger.New("archiver-process"),
		archiver: a,
		done:     make(chan error, 1),
	}
}

// Run - background process
//
// shutdown cancels the run, which stops at the next checkpoint
func (p *archiveProcess) Run(args interface{}, shutdown <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-shutdown:
			p.log.Info("stopping at next checkpoint…")
			cancel()
		case <-ctx.Done():
		}
	}()

	p.done <- p.archiver.Run(ctx)
}
