// SPDX-License-Identifier: GPL-2.0-or-later

package register

import "github.com/ealekseyev/E90RemoteStart/pkg/canbus"

// ComputeMask compares two payloads nibble by nibble. Suppressed nibbles
// never report a change. An absent slot compares as its placeholder, so a
// byte appearing or disappearing marks both of its nibbles changed.
func ComputeMask(old, new [canbus.SlotCount]string, suppressed NibbleSet) ChangeMask {
	var mask ChangeMask
	for i := 0; i < canbus.NibbleCount; i++ {
		if suppressed[i] {
			continue
		}
		mask[i] = canbus.NibbleAt(old, i) != canbus.NibbleAt(new, i)
	}
	return mask
}
