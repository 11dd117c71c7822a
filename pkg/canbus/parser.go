// SPDX-License-Identifier: GPL-2.0-or-later

package canbus

import (
	"bytes"
	"regexp"
	"strings"
)

// Inbound frame line, e.g. "RX: 0x0a9 Data: 5e 47 b3 9f 2b b3 3f fb".
// Byte tokens are always two hex digits on the wire.
var frameLineRe = regexp.MustCompile(`^RX:\s*0x([0-9A-Fa-f]+)\s+Data:\s*((?:[0-9A-Fa-f]{2}\s*)+)`)

// ParseLine parses one inbound frame line. The second return value is
// false for anything that does not match the wire format; corrupted and
// partial lines are expected, especially at stream start, and are simply
// skipped by callers.
func ParseLine(line string) (Frame, bool) {
	m := frameLineRe.FindStringSubmatch(line)
	if m == nil {
		return Frame{}, false
	}
	return NewFrame(m[1], strings.Fields(m[2])), true
}

// LineBuffer accumulates raw byte chunks from the transport and yields
// complete lines. Partial lines are held until their terminator arrives.
type LineBuffer struct {
	buf []byte
}

// Split appends a chunk and returns all newly completed lines, trimmed
// of surrounding whitespace. Empty lines are dropped.
func (b *LineBuffer) Split(chunk []byte) []string {
	b.buf = append(b.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(b.buf, '\n')
		if i < 0 {
			return lines
		}
		line := strings.TrimSpace(string(b.buf[:i]))
		b.buf = b.buf[i+1:]
		if line != "" {
			lines = append(lines, line)
		}
	}
}
