// SPDX-License-Identifier: GPL-2.0-or-later

package canbus

import "testing"

func TestParseLine_Valid(t *testing.T) {
	f, ok := ParseLine("RX: 0x0a9 Data: 5e 47 b3 9f 2b b3 3f fb")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if f.ID != "0a9" {
		t.Errorf("ID = %q, want %q", f.ID, "0a9")
	}
	want := [SlotCount]string{"5e", "47", "b3", "9f", "2b", "b3", "3f", "fb"}
	if f.Data != want {
		t.Errorf("Data = %v, want %v", f.Data, want)
	}
}

func TestParseLine_CaseAndPadding(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantID   string
		wantData [SlotCount]string
	}{
		{
			name:     "uppercase hex normalized to lowercase",
			line:     "RX: 0x1EE Data: 04 FF",
			wantID:   "1ee",
			wantData: [SlotCount]string{"04", "ff", "--", "--", "--", "--", "--", "--"},
		},
		{
			name:     "short identifier zero padded",
			line:     "RX: 0x9 Data: 01",
			wantID:   "009",
			wantData: [SlotCount]string{"01", "--", "--", "--", "--", "--", "--", "--"},
		},
		{
			name:     "over-length payload truncated to eight bytes",
			line:     "RX: 0x123 Data: 00 11 22 33 44 55 66 77 88 99",
			wantID:   "123",
			wantData: [SlotCount]string{"00", "11", "22", "33", "44", "55", "66", "77"},
		},
		{
			name:     "extended identifier kept wider than three digits",
			line:     "RX: 0x18db Data: aa",
			wantID:   "18db",
			wantData: [SlotCount]string{"aa", "--", "--", "--", "--", "--", "--", "--"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ParseLine(tt.line)
			if !ok {
				t.Fatalf("ParseLine(%q) did not match", tt.line)
			}
			if f.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", f.ID, tt.wantID)
			}
			if f.Data != tt.wantData {
				t.Errorf("Data = %v, want %v", f.Data, tt.wantData)
			}
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	lines := []string{
		"",
		"garbage",
		"RX: 0x0a9",
		"RX: 0x0a9 Data:",
		"RX: 0xzz Data: 01",
		"TX: 0x0a9 Data: 01 02",
		"Data: 01 02 03",
		"X: 0x0a9 Data: 5e 47", // truncated start, typical at stream open
	}
	for _, line := range lines {
		if _, ok := ParseLine(line); ok {
			t.Errorf("ParseLine(%q) matched, want rejection", line)
		}
	}
}

func TestFrameNibble(t *testing.T) {
	f := NewFrame("0a9", []string{"5e", "fb"})

	tests := []struct {
		idx  int
		want byte
	}{
		{0, '5'},
		{1, 'e'},
		{2, 'f'},
		{3, 'b'},
		{4, '-'}, // absent slot
		{15, '-'},
	}
	for _, tt := range tests {
		if got := f.Nibble(tt.idx); got != tt.want {
			t.Errorf("Nibble(%d) = %q, want %q", tt.idx, got, tt.want)
		}
	}
}

func TestLineBuffer_SplitAcrossChunks(t *testing.T) {
	var b LineBuffer

	lines := b.Split([]byte("RX: 0x0a9 Data: 5e"))
	if len(lines) != 0 {
		t.Fatalf("partial chunk yielded %d lines, want 0", len(lines))
	}

	lines = b.Split([]byte(" 47\r\nRX: 0x1ee Data: 04\nRX: 0x2"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "RX: 0x0a9 Data: 5e 47" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "RX: 0x1ee Data: 04" {
		t.Errorf("line 1 = %q", lines[1])
	}

	lines = b.Split([]byte("1a Data: ff\n"))
	if len(lines) != 1 || lines[0] != "RX: 0x21a Data: ff" {
		t.Errorf("final flush = %v", lines)
	}
}

func TestLineBuffer_DropsBlankLines(t *testing.T) {
	var b LineBuffer
	lines := b.Split([]byte("\n\r\n  \nRX: 0x0a9 Data: 01\n"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
}
