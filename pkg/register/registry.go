// SPDX-License-Identifier: GPL-2.0-or-later

package register

import "github.com/ealekseyev/E90RemoteStart/pkg/canbus"

// Registry holds one Record per CAN identifier, in first-seen order.
type Registry struct {
	records   map[string]*Record
	order     []string
	blacklist Blacklist
}

// NewRegistry returns an empty registry using bl to suppress nibbles.
func NewRegistry(bl Blacklist) *Registry {
	return &Registry{
		records:   make(map[string]*Record),
		blacklist: bl,
	}
}

// Apply folds one frame into the registry and returns the affected record.
//
// A first frame for an identifier claims the next grid slot and marks every
// non-suppressed nibble changed, so new identifiers light up whole on
// arrival. Later frames carry the mask of nibbles that differ from the
// previous payload.
func (r *Registry) Apply(f canbus.Frame) *Record {
	rec, ok := r.records[f.ID]
	if !ok {
		rec = &Record{
			ID:         f.ID,
			Data:       f.Data,
			Suppressed: r.blacklist.For(f.ID),
			Slot:       len(r.order),
			FirstSeen:  true,
			Frames:     1,
		}
		for i := range rec.Mask {
			rec.Mask[i] = !rec.Suppressed[i]
		}
		r.records[f.ID] = rec
		r.order = append(r.order, f.ID)
		return rec
	}

	rec.Mask = ComputeMask(rec.Data, f.Data, rec.Suppressed)
	rec.Data = f.Data
	rec.FirstSeen = false
	rec.Frames++
	return rec
}

// Len returns the number of identifiers seen so far.
func (r *Registry) Len() int {
	return len(r.order)
}

// Lookup returns the record for id, or nil if the identifier has not been
// seen.
func (r *Registry) Lookup(id string) *Record {
	return r.records[canbus.NormalizeID(id)]
}

// Records returns all records in slot order.
func (r *Registry) Records() []*Record {
	out := make([]*Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}
