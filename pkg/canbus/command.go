// SPDX-License-Identifier: GPL-2.0-or-later

package canbus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Send command grammar: "<id>:<hex bytes...>[ repeat <ms>]"
// with a 1-3 digit hex identifier and 1-2 digit hex byte tokens.
var sendCommandRe = regexp.MustCompile(`^([0-9a-f]{1,3}):\s*((?:[0-9a-f]{1,2}\s*)+?)(?:\s+repeat\s+([0-9]+))?$`)

// SendCommand is one parsed operator command from the send overlay.
type SendCommand struct {
	ID       string
	Data     []string
	Interval time.Duration // zero for a single send
}

// ParseSendCommand parses an overlay command line. Examples:
//
//	12:1 2 3
//	0a9:ff 00 repeat 100
//
// The repeat interval is in milliseconds and must be positive.
func ParseSendCommand(text string) (*SendCommand, error) {
	text = strings.ToLower(strings.TrimSpace(text))

	m := sendCommandRe.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("invalid command, want <id>:<hex bytes...> [repeat <ms>]")
	}

	cmd := &SendCommand{
		ID:   NormalizeID(m[1]),
		Data: strings.Fields(m[2]),
	}

	if m[3] != "" {
		ms, err := strconv.Atoi(m[3])
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("repeat interval must be a positive number of milliseconds")
		}
		cmd.Interval = time.Duration(ms) * time.Millisecond
	}

	return cmd, nil
}

// Repeats reports whether the command requests periodic transmission.
func (c *SendCommand) Repeats() bool {
	return c.Interval > 0
}

// Frame returns the serialized outbound frame for this command.
func (c *SendCommand) Frame() string {
	return FormatFrame(c.ID, c.Data)
}

// Wire returns the frame with its line terminator, ready for the transport.
func (c *SendCommand) Wire() string {
	return c.Frame() + "\n"
}
