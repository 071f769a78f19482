// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"fmt"

	"github.com/primegap/primegapd/background"
)

type announcer struct{}

func (announcer) Run(args interface{}, shutdown <-chan struct{}) {
	fmt.Printf("start: %v\n", args)
	<-shutdown
	fmt.Printf("stop: %v\n", args)
}

func Example() {
	p := background.Start(background.Processes{announcer{}}, "archiver")
	p.Stop()

	// Output:
	// start: archiver
	// stop: archiver
}
