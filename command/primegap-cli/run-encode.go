// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/primegap/primegapd/numeral"
)

func runEncode(c *cli.Context) error {

	m := getMetadata(c)

	for _, arg := range c.Args() {
		n, err := strconv.ParseInt(arg, 10, 64)
		if nil != err {
			return err
		}
		token, err := numeral.Default.EncodeSigned(n)
		if nil != err {
			return err
		}
		fmt.Fprintf(m.w, "%d  %s\n", n, token)
	}
	return nil
}

func runValue(c *cli.Context) error {

	m := getMetadata(c)

	for _, arg := range c.Args() {
		n, err := numeral.Default.Decode(numeral.StripMarkers(arg))
		if nil != err {
			return err
		}
		fmt.Fprintf(m.w, "%s  %d\n", arg, n)
	}
	return nil
}
