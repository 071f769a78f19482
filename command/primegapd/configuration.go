// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/primegap/primegapd/archiver"
	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/configuration"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/journal"
	"github.com/primegap/primegapd/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultBackend           = block.FileBackend
	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "primegap.leveldb"

	defaultTotalBlocks = 256
	defaultBlockSize   = 1 << 32

	defaultJournalFile  = "progress.json"
	defaultPollInterval = "5s"

	defaultMaxCPUUsage = 50

	defaultLogDirectory = "log"
	defaultLogFile      = "primegapd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// fresh map each time as the parser merges into it
func defaultLogLevels() LoglevelMap {
	return LoglevelMap{
		logger.DefaultTag: "critical",
	}
}

// DatabaseType - where block records are kept
type DatabaseType struct {
	Backend   string `gluamapper:"backend" json:"backend"`
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// PlanType - the fixed partition of the number line
type PlanType struct {
	TotalBlocks uint64 `gluamapper:"total_blocks" json:"total_blocks"`
	BlockSize   uint64 `gluamapper:"block_size" json:"block_size"`
	Tier        string `gluamapper:"tier" json:"tier"`
}

// JournalType - progress tracking
type JournalType struct {
	File               string `gluamapper:"file" json:"file"`
	MaxParallelFiles   int    `gluamapper:"max_parallel_files" json:"max_parallel_files"`
	CheckpointInterval uint64 `gluamapper:"checkpoint_interval" json:"checkpoint_interval"`
	PollInterval       string `gluamapper:"poll_interval" json:"poll_interval"`
	LargeGap           uint64 `gluamapper:"large_gap" json:"large_gap"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	MaxCPUUsage   int                  `gluamapper:"max_cpu_usage" json:"max_cpu_usage"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Plan          PlanType             `gluamapper:"plan" json:"plan"`
	Journal       JournalType          `gluamapper:"journal" json:"journal"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`

	pollInterval time.Duration
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		MaxCPUUsage:   defaultMaxCPUUsage,

		Database: DatabaseType{
			Backend:   defaultBackend,
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Plan: PlanType{
			TotalBlocks: defaultTotalBlocks,
			BlockSize:   defaultBlockSize,
		},

		Journal: JournalType{
			File:               defaultJournalFile,
			MaxParallelFiles:   journal.DefaultMaxParallel,
			CheckpointInterval: archiver.DefaultCheckpointInterval,
			PollInterval:       defaultPollInterval,
			LargeGap:           archiver.DefaultLargeGap,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels(),
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	switch options.Database.Backend {
	case block.FileBackend, block.LevelDBBackend:
	default:
		return nil, fault.InvalidStoreBackend
	}

	if 0 == options.Plan.TotalBlocks {
		return nil, fault.InvalidBlockCount
	}
	if 0 == options.Plan.BlockSize {
		return nil, fault.InvalidBlockSize
	}
	if "" == options.Plan.Tier {
		options.Plan.Tier = block.Tier(options.Plan.BlockSize)
	}
	if !util.IsPlainName(options.Plan.Tier) {
		return nil, fmt.Errorf("Tier: %q is not plain name", options.Plan.Tier)
	}

	if options.Journal.MaxParallelFiles < 1 {
		return nil, fault.InvalidMaxParallel
	}
	if 0 == options.Journal.CheckpointInterval {
		options.Journal.CheckpointInterval = archiver.DefaultCheckpointInterval
	}
	options.pollInterval, err = time.ParseDuration(options.Journal.PollInterval)
	if nil != err {
		return nil, err
	}
	if options.pollInterval <= 0 {
		return nil, fmt.Errorf("PollInterval: %q must be positive", options.Journal.PollInterval)
	}

	if options.MaxCPUUsage <= 0 || options.MaxCPUUsage > 100 {
		options.MaxCPUUsage = defaultMaxCPUUsage
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Journal.File, &options.DataDirectory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		if !util.IsPlainName(*f[0]) {
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
		if nil != f[1] {
			*f[0] = util.EnsureAbsolute(*f[1], *f[0])
		}
	}

	// done
	return options, nil
}

// worker goroutines from the CPU share
func (c *Configuration) workerCount() int {
	cpus := runtime.NumCPU()
	n := cpus * c.MaxCPUUsage / 100
	if n < 1 {
		return 1
	}
	if n > cpus {
		return cpus
	}
	return n
}

// archiver parameters
func (c *Configuration) archiverConfig() archiver.Config {
	return archiver.Config{
		Tier:               c.Plan.Tier,
		BlockSize:          c.Plan.BlockSize,
		TotalBlocks:        c.Plan.TotalBlocks,
		CheckpointInterval: c.Journal.CheckpointInterval,
		PollInterval:       c.pollInterval,
		Workers:            c.workerCount(),
		LargeGap:           c.Journal.LargeGap,
	}
}
