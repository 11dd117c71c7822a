// SPDX-License-Identifier: GPL-2.0-or-later

package register

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
)

// Blacklist maps a CAN identifier to the nibbles whose changes should be
// ignored. Keys are normalized identifiers.
type Blacklist map[string]NibbleSet

// For returns the suppressed nibble set for id, empty when the identifier
// is not listed.
func (b Blacklist) For(id string) NibbleSet {
	return b[canbus.NormalizeID(id)]
}

// ParseBlacklist decodes the JSON blacklist form, a map from identifier to
// a list of nibble indices:
//
//	{"0A9": [14, 15], "1EE": [0]}
//
// Identifier keys are normalized and out-of-range indices are ignored.
func ParseBlacklist(data []byte) (Blacklist, error) {
	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing blacklist: %w", err)
	}

	bl := make(Blacklist, len(raw))
	for id, indices := range raw {
		set := bl[canbus.NormalizeID(id)]
		for _, i := range indices {
			if i >= 0 && i < canbus.NibbleCount {
				set[i] = true
			}
		}
		bl[canbus.NormalizeID(id)] = set
	}
	return bl, nil
}

// LoadBlacklist reads a JSON blacklist file from disk.
func LoadBlacklist(path string) (Blacklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blacklist: %w", err)
	}
	return ParseBlacklist(data)
}
