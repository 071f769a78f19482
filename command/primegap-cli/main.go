// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/storage"
)

type metadata struct {
	backend   string
	directory string
	tier      string
	journal   string
	verbose   bool
	e         io.Writer
	w         io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	logging := logger.Configuration{
		Directory: os.TempDir(),
		File:      "primegap-cli.log",
		Size:      1048576,
		Count:     10,
		Console:   true,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// stores and the journal log through this
	if err := logger.Initialise(logging); nil != err {
		fmt.Fprintf(os.Stderr, "logger setup failed with error: %s\n", err)
		os.Exit(1)
	}
	defer logger.Finalise()

	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		logger.Finalise()
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "primegap-cli"
	app.Usage = "inspect a prime gap archive"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "backend, b",
			Value: block.FileBackend,
			Usage: " block storage `BACKEND` [file|leveldb]",
		},
		cli.StringFlag{
			Name:  "directory, d",
			Value: ".",
			Usage: " block files `DIR`, or the LevelDB database for the leveldb backend",
		},
		cli.StringFlag{
			Name:  "tier, t",
			Value: block.Tier(1 << 32),
			Usage: " block size `TIER` of the file names",
		},
		cli.StringFlag{
			Name:  "journal, j",
			Value: "progress.json",
			Usage: " journal `FILE` (file backend only)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list",
			Usage:  "list blocks with their completion state",
			Action: runList,
		},
		{
			Name:      "show",
			Usage:     "show the metadata of a block record",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "*block file `NAME`",
				},
				cli.BoolFlag{
					Name:  "data, D",
					Usage: " include the encoded stream",
				},
			},
			Action: runShow,
		},
		{
			Name:   "journal",
			Usage:  "print the journal",
			Action: runJournal,
		},
		{
			Name:      "decode",
			Usage:     "decode a gap stream into primes",
			ArgsUsage: "\n   (+ = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "+block file `NAME`",
				},
				cli.StringFlag{
					Name:  "stream, s",
					Value: "",
					Usage: "+encoded `STREAM`",
				},
				cli.Uint64Flag{
					Name:  "origin, o",
					Value: 0,
					Usage: " first number of a stream given with --stream `N`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 20,
					Usage: " number of primes to print, zero for all `COUNT`",
				},
			},
			Action: runDecode,
		},
		{
			Name:      "verify",
			Usage:     "check digests, prime counts and chain links",
			ArgsUsage: "[NAME...]",
			Action:    runVerify,
		},
		{
			Name:      "encode",
			Usage:     "encode numbers as tokens",
			ArgsUsage: "NUMBER...",
			Action:    runEncode,
		},
		{
			Name:      "value",
			Usage:     "decode tokens to numbers",
			ArgsUsage: "TOKEN...",
			Action:    runValue,
		},
		{
			Name:  "version",
			Usage: "display primegap-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		m := &metadata{
			backend:   c.GlobalString("backend"),
			directory: c.GlobalString("directory"),
			tier:      c.GlobalString("tier"),
			journal:   c.GlobalString("journal"),
			verbose:   c.GlobalBool("verbose"),
			e:         c.App.ErrWriter,
			w:         c.App.Writer,
		}
		c.App.Metadata["config"] = m

		switch m.backend {
		case block.FileBackend:
		case block.LevelDBBackend:
			command := c.Args().Get(0)
			if !needsStore(command) {
				return nil
			}
			if m.verbose {
				fmt.Fprintf(m.e, "open database: %s\n", m.directory)
			}
			return storage.Initialise(m.directory, storage.ReadOnly)
		default:
			return fmt.Errorf("backend: %q can only be %s/%s", m.backend, block.FileBackend, block.LevelDBBackend)
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		storage.Finalise()
		return nil
	}

	return app
}

// commands that read the archive
func needsStore(command string) bool {
	switch command {
	case "list", "show", "journal", "decode", "verify":
		return true
	default:
		return false
	}
}
