// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/dustin/go-humanize"
)

// setup command handler
//
// commands that do not need the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "plan", "status", "st":
		return false // defer processing until the archive is open

	case "config-test", "cfg":
		return false // defer processing until configuration is read

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	case "help", "h", "?":
		printHelp(program)
		return true

	default:
		fmt.Printf("error: no such command: %q\n", command)
		printHelp(program)
		exitwithstatus.Exit(1)
	}
	return true
}

func printHelp(program string) {
	fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)
	fmt.Printf("supported commands:\n\n")
	fmt.Printf("  help                   (h)      - display this message\n\n")
	fmt.Printf("  version                (v)      - display version string\n\n")
	fmt.Printf("  config-test            (cfg)    - just check the configuration file\n\n")
	fmt.Printf("  plan                            - create the block records and journal, then exit\n\n")
	fmt.Printf("  status                 (st)     - summary of the journal\n\n")
	fmt.Printf("  start                  (run)    - run the sieve (the default)\n\n")
}

// configuration command handler
//
// commands that only need the parsed configuration
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "run"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		buffer, err := json.MarshalIndent(options, "", "  ")
		if nil != err {
			exitwithstatus.Message("configuration error: %s", err)
		}
		fmt.Printf("configuration:\n%s\n", buffer)
		return true

	default:
		return false
	}
}

// data command handler
//
// commands that need the archive to be open
func processDataCommand(log *logger.L, arguments []string, a *archive) bool {

	command := "run"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "plan":
		fmt.Printf("created block records: %d\n", a.created)
		log.Infof("plan: created: %d", a.created)
		return true

	case "status", "st":
		printStatus(a)
		return true

	default:
		return false
	}
}

func printStatus(a *archive) {
	d := a.journal.Snapshot()

	current := "-"
	if nil != d.Status.CurrentFile {
		current = *d.Status.CurrentFile
	}

	fmt.Fprintf(os.Stdout, "genesis completed:   %t\n", d.Status.GenesisCompleted)
	fmt.Fprintf(os.Stdout, "completed blocks:    %s of %s\n",
		humanize.Comma(int64(d.Status.TotalCompletedFiles)), humanize.Comma(int64(len(d.FileList))))
	fmt.Fprintf(os.Stdout, "current file:        %s\n", current)
	fmt.Fprintf(os.Stdout, "max parallel files:  %d\n", d.Settings.MaxParallelFiles)
	fmt.Fprintf(os.Stdout, "block size:          %s\n", humanize.Comma(int64(d.Settings.BlockSize)))
	fmt.Fprintf(os.Stdout, "last updated:        %s\n", d.Status.Timestamp)
	for _, p := range d.SieveMetadata.InProgress {
		cursor := "-"
		if nil != p.LastPrimeProcessed {
			cursor = humanize.Comma(int64(*p.LastPrimeProcessed))
		}
		fmt.Fprintf(os.Stdout, "  in progress: %s  start: %s  cursor: %s\n",
			p.FileName, humanize.Comma(int64(p.StartPrime)), cursor)
	}
}
