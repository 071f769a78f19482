// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/archiver"
	"github.com/primegap/primegapd/background"
	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/numeral"
	"github.com/primegap/primegapd/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("backend: %s", theConfiguration.Database.Backend)
	log.Infof("plan: %#v", theConfiguration.Plan)
	log.Debugf("%s = %#v", "Journal", theConfiguration.Journal)

	// the database is only needed by the LevelDB backend
	if block.LevelDBBackend == theConfiguration.Database.Backend {
		log.Info("initialise storage")
		err = storage.Initialise(theConfiguration.Database.Name, storage.ReadWrite)
		if nil != err {
			log.Criticalf("storage initialise error: %s", err)
			exitwithstatus.Message("storage initialise error: %s", err)
		}
		defer storage.Finalise()
	}

	log.Info("open archive")
	theArchive, err := openArchive(theConfiguration)
	if nil != err {
		log.Criticalf("open archive error: %s", err)
		exitwithstatus.Message("open archive error: %s", err)
	}
	log.Infof("created block records: %d", theArchive.created)

	// these commands are allowed to access the archive
	if len(arguments) > 0 && processDataCommand(log, arguments, theArchive) {
		return
	}

	theArchiver, err := archiver.New(theConfiguration.archiverConfig(), numeral.Default, theArchive.store, theArchive.journal)
	if nil != err {
		log.Criticalf("archiver error: %s", err)
		exitwithstatus.Message("archiver error: %s", err)
	}

	// reload max_parallel_files when the configuration changes
	watcherChannel := WatcherChannel{
		change: make(chan struct{}, 1),
		remove: make(chan struct{}, 1),
	}
	watcher, err := newFileWatcher(configurationFile, logger.New(FileWatcherLoggerPrefix), watcherChannel)
	if nil != err {
		exitwithstatus.Message("%s: file watcher setup failed with error: %s", program, err)
	}
	defer watcher.Close()
	if err := watcher.Start(); nil != err {
		exitwithstatus.Message("%s: file watcher start failed with error: %s", program, err)
	}

	archiveRunner := newArchiveProcess(theArchiver)
	processes := background.Processes{
		newReloader(configurationFile, theArchive.journal, watcherChannel),
		archiveRunner,
	}
	handle := background.Start(processes, nil)

	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-ch:
		log.Infof("received signal: %v", sig)
		if 0 == len(options["quiet"]) {
			fmt.Printf("\nreceived signal: %v\n", sig)
			fmt.Printf("\nshutting down...\n")
		}
	case err := <-archiveRunner.done:
		if nil != err {
			log.Criticalf("archiver error: %s", err)
		} else {
			log.Infof("archive run finished, remaining blocks: %d", theArchive.journal.Remaining())
		}
		archiveRunner.done <- err
	}

	log.Info("stopping background processes")
	handle.Stop()

	if err := <-archiveRunner.done; nil != err {
		exitwithstatus.Message("%s: archiver error: %s", program, err)
	}
}
