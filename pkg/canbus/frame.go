// SPDX-License-Identifier: GPL-2.0-or-later

package canbus

import "strings"

// Frame is one CAN frame as carried on the serial link: a canonical
// identifier plus exactly SlotCount byte slots. Each slot is either two
// lowercase hex digits or AbsentSlot.
type Frame struct {
	ID   string
	Data [SlotCount]string
}

// NewFrame builds a Frame from an identifier and raw byte tokens.
// Short payloads are padded with AbsentSlot; long payloads are truncated
// to SlotCount bytes.
func NewFrame(id string, data []string) Frame {
	f := Frame{ID: NormalizeID(id)}
	for i := 0; i < SlotCount; i++ {
		if i < len(data) {
			f.Data[i] = normalizeByte(data[i])
		} else {
			f.Data[i] = AbsentSlot
		}
	}
	return f
}

// Nibble returns the hex character of nibble index i (0-15): the high
// digit of byte i/2 for even i, the low digit for odd i. Absent slots
// yield AbsentNibble.
func (f Frame) Nibble(i int) byte {
	return NibbleAt(f.Data, i)
}

// NibbleAt reads nibble index i from an 8-slot payload.
func NibbleAt(data [SlotCount]string, i int) byte {
	slot := data[i/2]
	if len(slot) < 2 {
		return AbsentNibble
	}
	if i%2 == 0 {
		return slot[0]
	}
	return slot[1]
}

// NormalizeID lowercases an identifier and left-pads it to IDWidth hex
// digits. Longer identifiers (29-bit extended IDs) are kept as-is.
func NormalizeID(id string) string {
	id = strings.ToLower(id)
	for len(id) < IDWidth {
		id = "0" + id
	}
	return id
}

func normalizeByte(tok string) string {
	tok = strings.ToLower(tok)
	if len(tok) == 1 {
		tok = "0" + tok
	}
	return tok
}
