// SPDX-License-Identifier: GPL-2.0-or-later

// Canmon - E90 CAN bus monitor and frame injector
//
// Operator-side tooling for the E90RemoteStart bridge, which tunnels CAN
// frames over USB serial as human-readable text lines.
package main

import (
	"os"

	"github.com/ealekseyev/E90RemoteStart/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
