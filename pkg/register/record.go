// SPDX-License-Identifier: GPL-2.0-or-later

// Package register tracks the last-seen payload of every CAN identifier on
// the bus and computes nibble-level change masks between consecutive frames.
// It backs both the live register view (one record per identifier, rendered
// in a fixed grid slot) and the offline nibble-change survey.
package register

import "github.com/ealekseyev/E90RemoteStart/pkg/canbus"

// NibbleSet flags a subset of the 16 payload nibbles.
type NibbleSet [canbus.NibbleCount]bool

// Indices returns the flagged nibble indices in ascending order.
func (s NibbleSet) Indices() []int {
	var out []int
	for i, set := range s {
		if set {
			out = append(out, i)
		}
	}
	return out
}

// ChangeMask marks which nibbles changed on the most recent update.
type ChangeMask [canbus.NibbleCount]bool

// Record is the live state of one CAN identifier.
//
// Slot is assigned once, in first-seen order, and never reused or
// reordered; Suppressed is fixed from the blacklist at creation time.
type Record struct {
	ID         string
	Data       [canbus.SlotCount]string
	Mask       ChangeMask
	Suppressed NibbleSet
	Slot       int
	FirstSeen  bool
	Frames     uint64
}
