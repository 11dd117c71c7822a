// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print raw frame lines as they arrive",
	Long: `Continuously print the raw frame stream, one line per frame.

No parsing or state is involved beyond line splitting, so this is the mode
to use when diagnosing the bridge itself or capturing traffic for replay:

  canmon log --port /dev/ttyUSB0 > capture.log

Supports serial, WebSocket and replay sources.`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Canmon - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	return streamLines(conn, func(line string) {
		fmt.Println(line)
	})
}

// streamLines reads the connection until it ends, handing each complete
// trimmed line to fn. EOF and a closed WebSocket end the stream cleanly.
func streamLines(conn Connection, fn func(line string)) error {
	var buf canbus.LineBuffer
	chunk := make([]byte, 256)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			for _, line := range buf.Split(chunk[:n]) {
				fn(line)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				return nil
			}
			return fmt.Errorf("stream error: %v", err)
		}
	}
}
