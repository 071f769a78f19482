// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archiver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/counter"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/journal"
	"github.com/primegap/primegapd/numeral"
	"github.com/primegap/primegapd/sieve"
)

// defaults for zero configuration values
const (
	DefaultCheckpointInterval = 1_000_000
	DefaultPollInterval       = 5 * time.Second
	DefaultLargeGap           = 174
)

// Config - fixed parameters of a run
type Config struct {
	Tier               string
	BlockSize          uint64
	TotalBlocks        uint64
	CheckpointInterval uint64        // primes between checkpoints
	PollInterval       time.Duration // wait when no block can be admitted
	Workers            int           // goroutines taking blocks
	LargeGap           uint64        // maximum gaps above this are logged
}

// Counts - statistics of the current run
type Counts struct {
	Completed   uint64
	Resumed     uint64
	Restarted   uint64
	Checkpoints uint64
	Primes      uint64
}

// Archiver - processes the blocks of one plan
type Archiver struct {
	sync.Mutex // held while the genesis block is processed

	log     *logger.L
	config  Config
	codec   *numeral.Codec
	store   block.Store
	journal *journal.Journal
	genesis string
	bases   *sieve.BasisCache
	limiter *rate.Limiter

	completed   counter.Counter
	resumed     counter.Counter
	restarted   counter.Counter
	checkpoints counter.Counter
	primes      counter.Counter
}

// New - create an archiver for a planned store and its journal
func New(config Config, codec *numeral.Codec, store block.Store, j *journal.Journal) (*Archiver, error) {
	if 0 == config.BlockSize {
		return nil, fault.InvalidBlockSize
	}
	if 0 == config.TotalBlocks {
		return nil, fault.InvalidBlockCount
	}
	limit := config.TotalBlocks * config.BlockSize
	if limit/config.BlockSize != config.TotalBlocks {
		return nil, fault.InvalidBlockCount
	}
	if "" == config.Tier {
		config.Tier = block.Tier(config.BlockSize)
	}
	if 0 == config.CheckpointInterval {
		config.CheckpointInterval = DefaultCheckpointInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if 0 == config.LargeGap {
		config.LargeGap = DefaultLargeGap
	}

	a := &Archiver{
		log:     logger.New("archiver"),
		config:  config,
		codec:   codec,
		store:   store,
		journal: j,
		genesis: block.Name(config.Tier, 0),
		limiter: rate.NewLimiter(rate.Every(config.PollInterval), 1),
	}
	a.bases = sieve.NewBasisCache(codec, limit-1, a.loadBasis)
	return a, nil
}

// the genesis stream as a sieve basis
func (a *Archiver) loadBasis(name string) (string, uint64, error) {
	record, err := a.store.Load(name)
	if nil != err {
		return "", 0, err
	}
	if !record.IsComplete() {
		return "", 0, fault.GenesisNotCompleted
	}
	return record.Data.EncodedData, record.Metadata.StartPrime, nil
}

// Counts - current run statistics
func (a *Archiver) Counts() Counts {
	return Counts{
		Completed:   a.completed.Uint64(),
		Resumed:     a.resumed.Uint64(),
		Restarted:   a.restarted.Uint64(),
		Checkpoints: a.checkpoints.Uint64(),
		Primes:      a.primes.Uint64(),
	}
}

// Run - process genesis then every remaining block
//
// returns nil when no block is left or the context was cancelled
// at a checkpoint
func (a *Archiver) Run(ctx context.Context) error {
	a.log.Infof("run: tier: %s  blocks: %d  workers: %d", a.config.Tier, a.config.TotalBlocks, a.config.Workers)

	if _, completed, _ := a.journal.GenesisState(); !completed {
		err := a.Genesis(ctx)
		if stopped(ctx, err) {
			a.log.Info("stopped during genesis")
			return nil
		}
		if nil != err {
			return err
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < a.config.Workers; i += 1 {
		worker := i
		group.Go(func() error {
			return a.worker(gctx, worker)
		})
	}
	err := group.Wait()

	counts := a.Counts()
	a.log.Infof("run finished: completed: %d  resumed: %d  restarted: %d  checkpoints: %d",
		counts.Completed, counts.Resumed, counts.Restarted, counts.Checkpoints)
	return err
}

// take blocks until none is left
func (a *Archiver) worker(ctx context.Context, worker int) error {
	a.log.Debugf("worker: %d  start", worker)
	defer a.log.Debugf("worker: %d  stop", worker)

	for {
		if nil != ctx.Err() {
			return nil
		}

		name, err := a.journal.Next()
		if nil == err {
			err = a.Process(ctx, name)
		}

		switch {
		case nil == err:
		case fault.NoBlockAvailable == err:
			return nil
		case fault.IsErrCapacity(err):
			if nil != a.limiter.Wait(ctx) {
				return nil
			}
		case fault.IsErrExists(err):
			// another worker took the block first
		case stopped(ctx, err):
			return nil
		default:
			a.log.Errorf("worker: %d  block: %s  error: %s", worker, name, err)
			return err
		}
	}
}

// a cancelled context reported back through a checkpoint
func stopped(ctx context.Context, err error) bool {
	return nil != err && nil != ctx.Err() && errors.Is(err, ctx.Err())
}
