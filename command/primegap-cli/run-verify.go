// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/primegap/primegapd/block"
	"github.com/primegap/primegapd/numeral"
)

// verify the named blocks, or every block and the chain
func runVerify(c *cli.Context) error {

	m := getMetadata(c)

	store, err := openStore(m)
	if nil != err {
		return err
	}

	names := []string(c.Args())
	all := 0 == len(names)
	if all {
		names, err = store.List()
		if nil != err {
			return err
		}
	}

	failures := 0
	records := make([]*block.Record, 0, len(names))
	for _, name := range names {
		r, err := store.Load(name)
		if nil != err {
			return err
		}
		records = append(records, r)

		if !r.IsComplete() {
			fmt.Fprintf(m.w, "%s: incomplete\n", name)
			continue
		}
		if err := block.Verify(numeral.Default, r); nil != err {
			fmt.Fprintf(m.w, "%s: FAIL: %s\n", name, err)
			failures += 1
			continue
		}
		fmt.Fprintf(m.w, "%s: ok\n", name)
	}

	if all {
		if err := block.VerifyChain(records); nil != err {
			fmt.Fprintf(m.w, "chain: FAIL: %s\n", err)
			failures += 1
		} else {
			fmt.Fprintf(m.w, "chain: ok\n")
		}
	}

	if failures > 0 {
		return ErrVerifyFailures
	}
	return nil
}
