// SPDX-License-Identifier: GPL-2.0-or-later

package canbus

import "strings"

// FormatFrame serializes an identifier and byte tokens into the outbound
// wire form "<3-hex-id>:<16 hex>". The identifier is lowercased, zero
// padded and truncated to its last IDWidth digits; bytes are zero padded
// to SlotCount entries and truncated to SlotCount. Absent slots serialize
// as zero bytes.
func FormatFrame(id string, data []string) string {
	id = strings.ToLower(id)
	for len(id) < IDWidth {
		id = "0" + id
	}
	if len(id) > IDWidth {
		id = id[len(id)-IDWidth:]
	}

	var b strings.Builder
	b.Grow(IDWidth + 1 + NibbleCount)
	b.WriteString(id)
	b.WriteByte(':')
	for i := 0; i < SlotCount; i++ {
		tok := "00"
		if i < len(data) && data[i] != AbsentSlot {
			tok = normalizeByte(data[i])
		}
		b.WriteString(tok)
	}
	return b.String()
}
