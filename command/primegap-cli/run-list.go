// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
)

func runList(c *cli.Context) error {

	m := getMetadata(c)

	store, err := openStore(m)
	if nil != err {
		return err
	}
	names, err := store.List()
	if nil != err {
		return err
	}

	for _, name := range names {
		r, err := store.Load(name)
		if nil != err {
			return err
		}

		state := "blank"
		primes := "-"
		if nil != r.Metadata.TotalPrimes {
			state = "partial"
			primes = humanize.Comma(int64(*r.Metadata.TotalPrimes))
		}
		if r.IsComplete() {
			state = "complete"
		}
		fmt.Fprintf(m.w, "%-20s  %-8s  %s..%s  primes: %s\n",
			name, state,
			humanize.Comma(int64(r.Metadata.StartPrime)),
			humanize.Comma(int64(r.Metadata.EndPrime)),
			primes)
	}
	if m.verbose {
		fmt.Fprintf(m.e, "blocks: %d\n", len(names))
	}
	return nil
}
