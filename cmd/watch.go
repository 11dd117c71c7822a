// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
	"github.com/ealekseyev/E90RemoteStart/pkg/register"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	watchBlacklistPath string
	watchHighlights    []string
	watchSimple        bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live register view with nibble change highlighting",
	Long: `Watch CAN bus traffic as a live register grid.

Each identifier claims a grid cell in first-seen order and keeps it for
the whole session. Every frame is diffed nibble by nibble against the
identifier's previous payload and changed nibbles light up, so counters,
flags and sensor values stand out against static padding.

A blacklist file (the JSON format the survey command emits) suppresses
known-noisy nibbles per identifier. Suppressed nibbles never highlight.

Typing composes a send command in the footer:

  <id>:<hex bytes...>            send once
  <id>:<hex bytes...> repeat <ms> send periodically until Enter/Esc

Example: 21a:ff repeat 250

q quits when the command buffer is empty. Replay sources are read-only,
so sending is disabled for them.

When stdout is not a terminal (or with --simple) the grid is skipped and
raw frame lines are printed instead, same as the log command.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchBlacklistPath, "blacklist", "", "JSON blacklist of nibbles to suppress per identifier")
	watchCmd.Flags().StringArrayVar(&watchHighlights, "highlight", nil, "Identifier to mark in the grid (repeatable)")
	watchCmd.Flags().BoolVar(&watchSimple, "simple", false, "Plain line output instead of the register grid")
}

func runWatch(cmd *cobra.Command, args []string) error {
	blacklistPath := watchBlacklistPath
	if blacklistPath == "" {
		blacklistPath = cfgBlacklistPath
	}

	var blacklist register.Blacklist
	if blacklistPath != "" {
		var err error
		blacklist, err = register.LoadBlacklist(blacklistPath)
		if err != nil {
			return err
		}
	}

	highlights := make(map[string]bool)
	for _, id := range append(cfgHighlights, watchHighlights...) {
		highlights[canbus.NormalizeID(id)] = true
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if watchSimple || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("Canmon - Raw Frame Log (no terminal, grid disabled)\n")
		fmt.Printf("Connection: %s\n\n", connInfo)
		return streamLines(conn, func(line string) {
			fmt.Println(line)
		})
	}

	m := initialWatchModel(conn, connInfo, blacklist, highlights)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Reader goroutine. Chunks are forwarded in arrival order and all
	// parsing and state updates happen in the model's Update.
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				p.Send(chunkMsg(chunk))
			}
			if err != nil {
				p.Send(streamClosedMsg{err: err})
				return
			}
		}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	if fm, ok := final.(watchModel); ok && fm.readErr != nil {
		return fmt.Errorf("stream error: %v", fm.readErr)
	}
	return nil
}
