// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"

	"github.com/urfave/cli"

	"github.com/primegap/primegapd/fault"
)

func runJournal(c *cli.Context) error {

	m := getMetadata(c)

	p, err := openPersister(m)
	if nil != err {
		return err
	}
	buffer, err := p.Read()
	if nil != err {
		return err
	}

	// print exactly what is stored, not a re-interpretation
	var document interface{}
	if err := json.Unmarshal(buffer, &document); nil != err {
		return fault.CorruptJournal
	}
	return printJson(m.w, document)
}
