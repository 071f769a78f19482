// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/primegap/primegapd/numeral"
)

func runDecode(c *cli.Context) error {

	m := getMetadata(c)

	name := c.String("name")
	stream := c.String("stream")
	origin := c.Uint64("origin")
	count := c.Int("count")

	switch {
	case "" == name && "" == stream:
		return ErrNoInput
	case "" != name && "" != stream:
		return ErrTooManyInputs
	case "" != name:
		store, err := openStore(m)
		if nil != err {
			return err
		}
		r, err := store.Load(name)
		if nil != err {
			return err
		}
		stream = r.Data.EncodedData
		origin = r.Metadata.StartPrime
	}

	s := numeral.Default.NewScanner(stream)
	p := origin
	printed := 0
	for s.Scan() {
		gap := s.Value()
		p += gap
		if 0 == count || printed < count {
			fmt.Fprintf(m.w, "%s  gap: %d\n", humanize.Comma(int64(p)), gap)
			printed += 1
		}
	}
	if nil != s.Err() {
		return s.Err()
	}

	if tail, ok := s.Tail(); ok {
		fmt.Fprintf(m.w, "primes: %s  trailing: %d\n", humanize.Comma(int64(s.Count())), tail)
	} else {
		fmt.Fprintf(m.w, "primes: %s  (partial stream)\n", humanize.Comma(int64(s.Count())))
	}
	return nil
}
