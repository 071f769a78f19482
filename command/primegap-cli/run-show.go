// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"
)

func runShow(c *cli.Context) error {

	m := getMetadata(c)

	name := c.String("name")
	if "" == name {
		return ErrNameRequired
	}

	store, err := openStore(m)
	if nil != err {
		return err
	}
	r, err := store.Load(name)
	if nil != err {
		return err
	}

	if !c.Bool("data") {
		r.Data.EncodedData = ""
	}
	return printJson(m.w, r)
}
