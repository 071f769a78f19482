// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/fault"
	"github.com/primegap/primegapd/journal"
)

// common errors - keep in alphabetic order
const (
	ErrNameRequired   = fault.InvalidError("block name is required")
	ErrNoInput        = fault.InvalidError("one of name or stream is required")
	ErrTooManyInputs  = fault.InvalidError("only one of name or stream is allowed")
	ErrVerifyFailures = fault.RecordError("verification failed")
)

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

func openStore(m *metadata) (block.Store, error) {
	return block.NewStore(m.backend, m.directory, m.tier)
}

func openPersister(m *metadata) (journal.Persister, error) {
	if block.LevelDBBackend == m.backend {
		return journal.NewLevelDBPersister()
	}
	return journal.NewFilePersister(m.journal), nil
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
