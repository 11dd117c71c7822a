// SPDX-License-Identifier: GPL-2.0-or-later

package register

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
)

// Stats accumulates per-identifier nibble change counts over a monitoring
// window. Unlike the live registry it keeps totals rather than the latest
// mask, so a run can be summarized into a suggested blacklist afterwards.
type Stats struct {
	ids         map[string]*idStats
	totalFrames int
}

type idStats struct {
	lastData     [canbus.SlotCount]string
	changeCounts [canbus.NibbleCount]int
	frames       int
	firstSeen    time.Time
	lastSeen     time.Time
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{ids: make(map[string]*idStats)}
}

// TotalFrames returns the number of frames observed so far.
func (s *Stats) TotalFrames() int { return s.totalFrames }

// IDCount returns the number of distinct identifiers observed so far.
func (s *Stats) IDCount() int { return len(s.ids) }

// Observe folds one frame into the accumulator and reports whether the
// identifier was seen for the first time. Absent payload slots count as
// zero bytes, so a shrinking payload registers as a change to zero.
func (s *Stats) Observe(f canbus.Frame, now time.Time) bool {
	var data [canbus.SlotCount]string
	for i, b := range f.Data {
		if b == canbus.AbsentSlot {
			b = "00"
		}
		data[i] = b
	}

	s.totalFrames++

	st, ok := s.ids[f.ID]
	if !ok {
		s.ids[f.ID] = &idStats{
			lastData:  data,
			frames:    1,
			firstSeen: now,
			lastSeen:  now,
		}
		return true
	}

	for i := 0; i < canbus.NibbleCount; i++ {
		if canbus.NibbleAt(st.lastData, i) != canbus.NibbleAt(data, i) {
			st.changeCounts[i]++
		}
	}
	st.lastData = data
	st.frames++
	st.lastSeen = now
	return false
}

// IDAnalysis summarizes one identifier after a monitoring window.
type IDAnalysis struct {
	FrameCount         int       `json:"frame_count"`
	ChangeCounts       []int     `json:"change_counts"`
	ChangeRates        []float64 `json:"change_rates"`
	FrequentChangers   []int     `json:"frequent_changers"`
	StableNibbles      []int     `json:"stable_nibbles"`
	SuggestedBlacklist []int     `json:"suggested_blacklist"`
}

// Analysis is the full survey result, serializable as JSON.
type Analysis struct {
	Duration    float64                `json:"monitor_duration_seconds"`
	TotalFrames int                    `json:"total_frames"`
	Threshold   float64                `json:"threshold_percent"`
	IDs         map[string]*IDAnalysis `json:"can_ids"`
}

// Analyze classifies each nibble of each identifier by its change rate.
// A nibble changing in at least threshold (a fraction, e.g. 0.1) of the
// frame-to-frame transitions is a frequent changer and lands on the
// suggested blacklist.
func (s *Stats) Analyze(duration time.Duration, threshold float64) *Analysis {
	a := &Analysis{
		Duration:    math.Round(duration.Seconds()*100) / 100,
		TotalFrames: s.totalFrames,
		Threshold:   threshold * 100,
		IDs:         make(map[string]*IDAnalysis, len(s.ids)),
	}

	for id, st := range s.ids {
		transitions := st.frames - 1
		if transitions < 1 {
			transitions = 1
		}

		ia := &IDAnalysis{
			FrameCount:         st.frames,
			ChangeCounts:       make([]int, canbus.NibbleCount),
			ChangeRates:        make([]float64, canbus.NibbleCount),
			FrequentChangers:   []int{},
			StableNibbles:      []int{},
			SuggestedBlacklist: []int{},
		}
		copy(ia.ChangeCounts, st.changeCounts[:])

		for i, count := range st.changeCounts {
			rate := float64(count) / float64(transitions)
			ia.ChangeRates[i] = math.Round(rate*10000) / 10000
			if rate >= threshold {
				ia.FrequentChangers = append(ia.FrequentChangers, i)
			} else {
				ia.StableNibbles = append(ia.StableNibbles, i)
			}
		}
		ia.SuggestedBlacklist = ia.FrequentChangers
		a.IDs[id] = ia
	}

	return a
}

// sortedIDs returns the analyzed identifiers in ascending order.
func (a *Analysis) sortedIDs() []string {
	ids := make([]string, 0, len(a.IDs))
	for id := range a.IDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BlacklistConfig extracts the suggested blacklist in the JSON form the
// monitor loads, keeping only identifiers with at least one noisy nibble.
func (a *Analysis) BlacklistConfig() map[string][]int {
	bl := make(map[string][]int)
	for _, id := range a.sortedIDs() {
		if ia := a.IDs[id]; len(ia.SuggestedBlacklist) > 0 {
			bl[id] = ia.SuggestedBlacklist
		}
	}
	return bl
}

// Report renders a human-readable summary with a per-identifier nibble map.
// "X" marks a nibble changing in over half the transitions, "x" one past
// the 10% mark, "." a stable nibble.
func (a *Analysis) Report() string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "CAN NIBBLE CHANGE ANALYSIS REPORT\n")
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Duration: %gs\n", a.Duration)
	fmt.Fprintf(&b, "Total frames: %d\n", a.TotalFrames)
	fmt.Fprintf(&b, "Unique CAN IDs: %d\n", len(a.IDs))
	fmt.Fprintf(&b, "Threshold for 'frequent changer': %g%%\n", a.Threshold)
	fmt.Fprintf(&b, "%s\n", rule)

	for _, id := range a.sortedIDs() {
		ia := a.IDs[id]
		fmt.Fprintf(&b, "\nCAN ID: %s\n", id)
		fmt.Fprintf(&b, "  Frames received: %d\n", ia.FrameCount)

		fmt.Fprintf(&b, "  Nibble map (0-15, bytes 0-7):\n")
		fmt.Fprintf(&b, "    Byte:    0     1     2     3     4     5     6     7\n")
		fmt.Fprintf(&b, "    Nibble: ")
		for i, rate := range ia.ChangeRates {
			symbol := "."
			switch {
			case rate >= 0.5:
				symbol = "X"
			case rate >= 0.1:
				symbol = "x"
			}
			if i%2 == 0 {
				fmt.Fprintf(&b, " %s", symbol)
			} else {
				fmt.Fprintf(&b, "%s  ", symbol)
			}
		}
		b.WriteByte('\n')

		fmt.Fprintf(&b, "    Counts: ")
		for i, count := range ia.ChangeCounts {
			if i%2 == 0 {
				fmt.Fprintf(&b, "%2d", count)
			} else {
				fmt.Fprintf(&b, "%-3d ", count)
			}
		}
		b.WriteByte('\n')

		if len(ia.FrequentChangers) > 0 {
			bytesAffected := map[int]bool{}
			for _, n := range ia.FrequentChangers {
				bytesAffected[n/2] = true
			}
			var affected []int
			for bi := range bytesAffected {
				affected = append(affected, bi)
			}
			sort.Ints(affected)
			fmt.Fprintf(&b, "  Suggested blacklist nibbles: [%s] (bytes: %s)\n",
				joinInts(ia.FrequentChangers), joinInts(affected))
		} else {
			fmt.Fprintf(&b, "  Suggested blacklist nibbles: [] (all stable)\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "LEGEND: X = >50%% change rate (counter/checksum)\n")
	fmt.Fprintf(&b, "        x = 10-50%% change rate (possible counter)\n")
	fmt.Fprintf(&b, "        . = <10%% change rate (stable/meaningful)\n")
	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}

// JSON renders the analysis indented for file output.
func (a *Analysis) JSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
