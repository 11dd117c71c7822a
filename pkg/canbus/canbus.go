// SPDX-License-Identifier: GPL-2.0-or-later

// Package canbus implements the text wire format spoken by the E90RemoteStart
// bridge firmware.
//
// The bridge tunnels CAN traffic over USB serial as human-readable lines.
// Received frames arrive as
//
//	RX: 0x0a9 Data: 5e 47 b3 9f 2b b3 3f fb
//
// and outbound frames are written as
//
//	<3-hex-id>:<16 hex nibbles>\n
//
// This package provides frame parsing, line buffering, outbound formatting,
// and the interactive send-command grammar.
package canbus

// Frame geometry
const (
	SlotCount   = 8  // byte slots per frame payload
	NibbleCount = 16 // hex digits per frame payload
	IDWidth     = 3  // canonical identifier width in hex digits
)

// AbsentSlot fills byte slots a frame did not carry. Its placeholder
// character never equals a hex digit, so absent-to-present transitions
// always read as a change.
const (
	AbsentSlot   = "--"
	AbsentNibble = byte('-')
)
