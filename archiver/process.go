// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archiver

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/sieve"
)

// Genesis - sieve the first block from scratch
//
// a partially encoded record is resumed when its last prime matches
// the journal cursor
func (a *Archiver) Genesis(ctx context.Context) error {
	a.Lock()
	defer a.Unlock()

	name, completed, cursor := a.journal.GenesisState()
	if completed {
		return fault.AlreadyCompleted
	}

	record, err := a.store.Load(name)
	if nil != err {
		return err
	}
	if 0 != record.Metadata.StartPrime {
		return fault.NotGenesisSegment
	}

	// saved but not yet recorded in the journal
	if record.IsComplete() && nil == block.Verify(a.codec, record) {
		a.log.Infof("genesis: %s  already encoded", name)
		return a.journal.MarkGenesis(true, lastPrime(record))
	}

	var position uint64
	resuming := nil != cursor
	if resuming {
		position = *cursor
	}
	encoder, err := a.encoder(name, record, position, resuming)
	if nil != err {
		return err
	}

	segment, err := sieve.NewSegment(record.Metadata.StartPrime, record.Metadata.EndPrime)
	if nil != err {
		return err
	}
	a.log.Debugf("%s: %s", name, segment.State())

	options := a.options(ctx, name, record, encoder, func(cursor uint64) error {
		return a.journal.MarkGenesis(false, cursor)
	})
	err = segment.Genesis(encoder, options)
	if nil != err {
		segment.Release()
		return err
	}
	a.log.Debugf("%s: %s", name, segment.State())

	if err := a.finish(name, record, segment, encoder); nil != err {
		return err
	}
	a.bases.Forget(name)
	return a.journal.MarkGenesis(true, encoder.Statistics().LastPrime)
}

// Process - admit, sieve, encode and complete one block
//
// the genesis block is handed to Genesis.  On any error the block
// stays in progress in the journal and can be resumed.
func (a *Archiver) Process(ctx context.Context, name string) error {
	if name == a.genesis {
		return a.Genesis(ctx)
	}

	record, err := a.store.Load(name)
	if nil != err {
		return err
	}
	start := record.Metadata.StartPrime

	err = a.journal.Begin(name, start)
	if nil != err {
		return err
	}
	a.log.Debugf("%s: %s", name, sieve.Admitted)

	err = a.process(ctx, name, record)
	if nil != err {
		a.journal.Release(name)
		return err
	}

	err = a.journal.Complete(name)
	if nil != err {
		a.journal.Release(name)
		return err
	}
	return nil
}

func (a *Archiver) process(ctx context.Context, name string, record *block.Record) error {
	if record.IsComplete() && nil == block.Verify(a.codec, record) {
		a.log.Infof("%s: already encoded", name)
		a.completed.Increment()
		return nil
	}

	cursor, resuming, err := a.journal.Cursor(name)
	if nil != err {
		return err
	}
	encoder, err := a.encoder(name, record, cursor, resuming)
	if nil != err {
		return err
	}

	basis, err := a.bases.Get(a.genesis)
	if nil != err {
		return err
	}

	segment, err := sieve.NewSegment(record.Metadata.StartPrime, record.Metadata.EndPrime)
	if nil != err {
		return err
	}
	defer segment.Release()

	err = segment.Propagate(basis)
	if nil != err {
		return err
	}
	a.log.Debugf("%s: %s", name, segment.State())

	options := a.options(ctx, name, record, encoder, func(cursor uint64) error {
		return a.journal.AdvanceCursor(name, cursor)
	})
	err = segment.Derive(encoder, options)
	if nil != err {
		return err
	}
	a.log.Debugf("%s: %s", name, segment.State())

	return a.finish(name, record, segment, encoder)
}

// an encoder continuing from the saved record, or a fresh one
//
// the record is only trusted when its last prime equals the journal
// cursor, anything else restarts the block from its start
func (a *Archiver) encoder(name string, record *block.Record, cursor uint64, resuming bool) (*sieve.Encoder, error) {
	m := &record.Metadata

	stats, started, err := record.Statistics()
	if nil == err && resuming && started && !stats.Finished && stats.TotalPrimes > 0 && stats.LastPrime == cursor {
		encoder, err := sieve.ResumeEncoder(a.codec, stats, record.Data.EncodedData)
		if nil == err {
			a.resumed.Increment()
			a.log.Infof("%s: resume after: %s  primes: %s",
				name, humanize.Comma(int64(cursor)), humanize.Comma(int64(stats.TotalPrimes)))
			return encoder, nil
		}
		a.log.Warnf("%s: cannot resume: %s", name, err)
	}

	if started || resuming || nil != err {
		a.restarted.Increment()
		a.log.Warnf("%s: restart from: %s", name, humanize.Comma(int64(m.StartPrime)))
	}
	record.Reset()
	return sieve.NewEncoder(a.codec, m.StartPrime, m.EndPrime)
}

// checkpoint saves the partial record before the journal moves
//
// a cancelled context stops the scan once the checkpoint is durable
func (a *Archiver) options(ctx context.Context, name string, record *block.Record, encoder *sieve.Encoder, advance func(uint64) error) sieve.Options {
	return sieve.Options{
		Interval: a.config.CheckpointInterval,
		Checkpoint: func(cursor uint64) error {
			stats := encoder.Statistics()
			if err := record.Apply(stats, encoder.Stream()); nil != err {
				return err
			}
			if err := a.store.Save(name, record); nil != err {
				return err
			}
			if err := advance(cursor); nil != err {
				return err
			}
			a.checkpoints.Increment()
			a.log.Debugf("%s: checkpoint: %s  primes: %s",
				name, humanize.Comma(int64(cursor)), humanize.Comma(int64(stats.TotalPrimes)))
			return ctx.Err()
		},
	}
}

// save the final record and release the bit vector
func (a *Archiver) finish(name string, record *block.Record, segment *sieve.Segment, encoder *sieve.Encoder) error {
	stats := encoder.Statistics()
	if err := record.Apply(stats, encoder.Stream()); nil != err {
		return err
	}
	if err := a.store.Save(name, record); nil != err {
		return err
	}
	if err := segment.Complete(); nil != err {
		return err
	}
	a.log.Debugf("%s: %s", name, segment.State())

	if stats.TotalPrimes > 1 && stats.MaxGap > a.config.LargeGap {
		a.log.Debugf("%s: large gap: %d  from: %s  to: %s",
			name, stats.MaxGap, humanize.Comma(int64(stats.MaxGapStart)), humanize.Comma(int64(stats.MaxGapEnd)))
	}

	a.completed.Increment()
	a.primes.Add(stats.TotalPrimes)
	a.log.Infof("%s: complete  primes: %s  max gap: %d  symbols: %s",
		name, humanize.Comma(int64(stats.TotalPrimes)), stats.MaxGap, humanize.Comma(int64(stats.EncodedSize)))
	return nil
}

func lastPrime(record *block.Record) uint64 {
	if nil == record.Metadata.LastPrime {
		return 0
	}
	return *record.Metadata.LastPrime
}
