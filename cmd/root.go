// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Replay flag
	replayPath string

	// Config file flag
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "canmon",
	Short: "E90 CAN Bus Register Monitor",
	Long: `Canmon - A CLI tool for watching and probing CAN bus traffic through a
serial or WebSocket frame bridge.

Provides a live register view with nibble-level change highlighting, a
nibble-change survey for finding counters and checksums, raw frame logging,
and frame injection with optional periodic repeat.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Replay:    --replay capture.log (read-only, sending disabled)

For WebSocket authentication, the password is read from the E90_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.2.0",
}

func init() {
	// Assigned here rather than in the literal: applyConfigFile reads the
	// root flagset, so a literal field would form an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return applyConfigFile()
	}

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Replay and config flags
	rootCmd.PersistentFlags().StringVar(&replayPath, "replay", "", "Replay frames from a capture file instead of a live connection")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/canmon/config.yaml)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
