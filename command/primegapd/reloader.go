// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/journal"
)

const (
	ReloaderLoggerPrefix = "config-reader"
)

// apply configuration changes that are allowed while running
type reloader struct {
	log      *logger.L
	fileName string
	journal  *journal.Journal
	channel  WatcherChannel
}

func newReloader(fileName string, j *journal.Journal, channel WatcherChannel) *reloader {
	return &reloader{
		log:      logger.New(ReloaderLoggerPrefix),
		fileName: fileName,
		journal:  j,
		channel:  channel,
	}
}

// Run - background process
func (r *reloader) Run(args interface{}, shutdown <-chan struct{}) {
	r.log.Info("starting…")
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-r.channel.change:
			r.refresh()
		case <-r.channel.remove:
			r.log.Warn("config file removed, keeping current settings")
		}
	}
	r.log.Info("shutting down…")
}

// only max_parallel_files is taken from a changed file
func (r *reloader) refresh() {
	c, err := getConfiguration(r.fileName)
	if nil != err {
		r.log.Errorf("failed to read configuration from: %s  error: %s", r.fileName, err)
		return
	}

	n := c.Journal.MaxParallelFiles
	if n == r.journal.MaxParallel() {
		r.log.Debug("max parallel files unchanged")
		return
	}
	err = r.journal.SetMaxParallel(n)
	if nil != err {
		r.log.Errorf("set max parallel files: %d  error: %s", n, err)
		return
	}
	r.log.Infof("max parallel files now: %d", n)
}
