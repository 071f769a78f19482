// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archiver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/primegap/primegapd/archiver"
	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/block/mocks"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/numeral"
)

func TestRun(t *testing.T) {
	a := newArchive(t, 6, 2)
	arch := a.archiver(t, nil)

	err := arch.Run(context.Background())
	assert.Nil(t, err, "run")

	records, err := block.LoadAll(a.store)
	assert.Nil(t, err, "load all")
	assert.Equal(t, 6, len(records), "records")
	for _, r := range records {
		checkRecord(t, r)
	}
	assert.Nil(t, block.VerifyChain(records), "chain")

	d := a.journal.Snapshot()
	assert.True(t, d.Status.GenesisCompleted, "genesis")
	assert.Equal(t, uint64(6), d.Status.TotalCompletedFiles, "completed")
	assert.Equal(t, 0, len(d.SieveMetadata.InProgress), "none in progress")
	for name, completed := range d.FileList {
		assert.True(t, completed, "%s: flag", name)
	}

	counts := arch.Counts()
	assert.Equal(t, uint64(6), counts.Completed, "completed count")
	assert.Equal(t, uint64(6057), counts.Primes, "primes below 60000")
	assert.Zero(t, counts.Resumed, "resumed")

	// a second run has nothing to do
	err = arch.Run(context.Background())
	assert.Nil(t, err, "second run")
	assert.Equal(t, uint64(6), arch.Counts().Completed, "nothing more")
}

func TestNew(t *testing.T) {
	_, err := archiver.New(archiver.Config{TotalBlocks: 4}, numeral.Default, nil, nil)
	assert.Equal(t, fault.InvalidBlockSize, err, "block size")

	_, err = archiver.New(archiver.Config{BlockSize: 10}, numeral.Default, nil, nil)
	assert.Equal(t, fault.InvalidBlockCount, err, "block count")

	_, err = archiver.New(archiver.Config{BlockSize: 1 << 40, TotalBlocks: 1 << 30}, numeral.Default, nil, nil)
	assert.Equal(t, fault.InvalidBlockCount, err, "overflow")
}

func TestProcessBeforeGenesis(t *testing.T) {
	a := newArchive(t, 3, 2)
	arch := a.archiver(t, nil)

	err := arch.Process(context.Background(), a.names[1])
	assert.Equal(t, fault.GenesisNotCompleted, err, "gated")
	assert.Equal(t, 0, len(a.journal.Snapshot().SieveMetadata.InProgress), "not admitted")

	assert.Nil(t, arch.Process(context.Background(), a.names[0]), "genesis")
	assert.Equal(t, fault.AlreadyCompleted, arch.Genesis(context.Background()), "genesis twice")
	assert.Nil(t, arch.Process(context.Background(), a.names[1]), "after genesis")
	assert.Equal(t, fault.AlreadyCompleted, arch.Process(context.Background(), a.names[1]), "twice")
}

func TestBasisInsufficient(t *testing.T) {
	// genesis 0..9 only holds primes up to 7
	a := newArchiveIn(t, t.Name(), 12, 10, 12)
	arch := a.archiver(t, nil)
	assert.Nil(t, arch.Genesis(context.Background()), "genesis")

	// √99 is covered
	assert.Nil(t, arch.Process(context.Background(), a.names[9]), "block 90..99")
	r, err := a.store.Load(a.names[9])
	assert.Nil(t, err, "load")
	checkRecord(t, r)
	assert.Equal(t, uint64(1), *r.Metadata.TotalPrimes, "only 97")

	// √109 is not
	err = arch.Process(context.Background(), a.names[10])
	assert.Equal(t, fault.BasisInsufficient, err, "insufficient")

	// the block stays in progress for a later run
	assert.Equal(t, []string{a.names[10]}, a.journal.Snapshot().Status.FilesInProgress, "in progress")
}

func TestResumeAfterCancel(t *testing.T) {
	a := newArchive(t, 3, 2)
	arch := a.archiver(t, nil)
	assert.Nil(t, arch.Genesis(context.Background()), "genesis")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt := &interruptingStore{
		Store:  a.store,
		at:     3,
		cancel: cancel,
	}
	err := a.archiver(t, interrupt).Process(ctx, a.names[1])
	assert.True(t, errors.Is(err, context.Canceled), "cancelled: %v", err)

	cursor, ok, err := a.journal.Cursor(a.names[1])
	assert.Nil(t, err, "cursor")
	assert.True(t, ok, "cursor set")

	partial, err := a.store.Load(a.names[1])
	assert.Nil(t, err, "load partial")
	assert.False(t, partial.IsComplete(), "partial")
	assert.Equal(t, uint64(300), *partial.Metadata.TotalPrimes, "three checkpoints")
	assert.Equal(t, cursor, *partial.Metadata.LastPrime, "cursor matches record")

	// restart with a fresh journal instance as a new process would
	a.journal = a.loadJournal(t, 2)
	resumed := a.archiver(t, nil)
	err = resumed.Process(context.Background(), a.names[1])
	assert.Nil(t, err, "resume")

	counts := resumed.Counts()
	assert.Equal(t, uint64(1), counts.Resumed, "resumed")
	assert.Zero(t, counts.Restarted, "restarted")

	r, err := a.store.Load(a.names[1])
	assert.Nil(t, err, "load")
	checkRecord(t, r)
	assert.Equal(t, uint64(1033), *r.Metadata.TotalPrimes, "primes 10000..19999")
}

func TestRestartOnCursorMismatch(t *testing.T) {
	a := newArchive(t, 3, 2)
	arch := a.archiver(t, nil)
	assert.Nil(t, arch.Genesis(context.Background()), "genesis")

	// the record is saved but the journal is never told
	diskFull := fault.IOFailure("write", "journal", errors.New("disk full"))
	interrupt := &interruptingStore{
		Store: a.store,
		at:    2,
		fail:  diskFull,
	}
	err := a.archiver(t, interrupt).Process(context.Background(), a.names[1])
	assert.Equal(t, diskFull, err, "failed checkpoint")

	cursor, _, err := a.journal.Cursor(a.names[1])
	assert.Nil(t, err, "cursor")
	partial, err := a.store.Load(a.names[1])
	assert.Nil(t, err, "load partial")
	assert.NotEqual(t, cursor, *partial.Metadata.LastPrime, "record ahead of journal")

	// the released block is offered again
	next, err := a.journal.Next()
	assert.Nil(t, err, "next")
	assert.Equal(t, a.names[1], next, "same block")

	again := a.archiver(t, nil)
	err = again.Process(context.Background(), a.names[1])
	assert.Nil(t, err, "process")
	assert.Equal(t, uint64(1), again.Counts().Restarted, "restarted")
	assert.Zero(t, again.Counts().Resumed, "not resumed")

	r, err := a.store.Load(a.names[1])
	assert.Nil(t, err, "load")
	checkRecord(t, r)
}

func TestGenesisResume(t *testing.T) {
	a := newArchive(t, 2, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt := &interruptingStore{
		Store:  a.store,
		at:     5,
		cancel: cancel,
	}
	err := a.archiver(t, interrupt).Run(ctx)
	assert.Nil(t, err, "stopped run")

	name, completed, cursor := a.journal.GenesisState()
	assert.Equal(t, a.names[0], name, "genesis name")
	assert.False(t, completed, "not completed")
	assert.NotNil(t, cursor, "cursor")

	a.journal = a.loadJournal(t, 1)
	arch := a.archiver(t, nil)
	err = arch.Run(context.Background())
	assert.Nil(t, err, "run")
	assert.Equal(t, uint64(1), arch.Counts().Resumed, "resumed genesis")

	records, err := block.LoadAll(a.store)
	assert.Nil(t, err, "load all")
	for _, r := range records {
		checkRecord(t, r)
	}
	assert.Equal(t, uint64(1229), *records[0].Metadata.TotalPrimes, "primes below 10000")
}

func TestSavedButNotCompleted(t *testing.T) {
	a := newArchive(t, 2, 1)
	arch := a.archiver(t, nil)
	assert.Nil(t, arch.Run(context.Background()), "run")

	// forget the completion of the last block but keep its record
	complete, err := a.store.Load(a.names[1])
	assert.Nil(t, err, "load")

	b := newArchiveIn(t, t.Name()+"-copy", 2, testBlockSize, 1)
	assert.Nil(t, b.archiver(t, nil).Genesis(context.Background()), "genesis")
	assert.Nil(t, b.store.Save(b.names[1], complete), "copy record")

	second := b.archiver(t, nil)
	assert.Nil(t, second.Process(context.Background(), b.names[1]), "process")
	assert.Zero(t, second.Counts().Primes, "no sieving")
	assert.Equal(t, uint64(2), b.journal.Snapshot().Status.TotalCompletedFiles, "completed")
}

func TestLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := newArchive(t, 3, 2)
	assert.Nil(t, a.archiver(t, nil).Genesis(context.Background()), "genesis")

	ioError := fault.IOFailure("read", a.names[2], errors.New("bad sector"))
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Load(a.names[2]).Return(nil, ioError).Times(1)

	err := a.archiver(t, store).Process(context.Background(), a.names[2])
	assert.Equal(t, ioError, err, "load error")
	assert.Equal(t, 0, len(a.journal.Snapshot().SieveMetadata.InProgress), "not admitted")
}

func TestFinalSaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := newArchive(t, 3, 2)
	assert.Nil(t, a.archiver(t, nil).Genesis(context.Background()), "genesis")

	// no checkpoint inside the block
	a.config.CheckpointInterval = archiver.DefaultCheckpointInterval

	genesis, err := a.store.Load(a.names[0])
	assert.Nil(t, err, "genesis record")
	planned, err := a.store.Load(a.names[2])
	assert.Nil(t, err, "planned record")

	ioError := fault.IOFailure("write", a.names[2], errors.New("read only"))
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Load(a.names[2]).Return(planned, nil).Times(1)
	store.EXPECT().Load(a.names[0]).Return(genesis, nil).Times(1)
	store.EXPECT().Save(a.names[2], gomock.Any()).Return(ioError).Times(1)

	arch := a.archiver(t, store)
	err = arch.Process(context.Background(), a.names[2])
	assert.Equal(t, ioError, err, "save error")
	assert.Zero(t, arch.Counts().Completed, "not completed")

	d := a.journal.Snapshot()
	assert.Equal(t, []string{a.names[2]}, d.Status.FilesInProgress, "still in progress")
	assert.False(t, d.FileList[a.names[2]], "not flagged")
}
