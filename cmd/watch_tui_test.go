// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeStream is a read-write connection backed by buffers.
type fakeStream struct {
	reads  chan []byte
	writes []string
}

func newFakeStream() *fakeStream {
	return &fakeStream{reads: make(chan []byte, 16)}
}

func (f *fakeStream) Read(p []byte) (int, error) {
	chunk, ok := <-f.reads
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (f *fakeStream) Write(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func (f *fakeStream) Close() error { return nil }

// readOnlyStream has no Write method, like the replay source.
type readOnlyStream struct{}

func (readOnlyStream) Read(p []byte) (int, error) { return 0, io.EOF }
func (readOnlyStream) Close() error               { return nil }

func updateWatch(t *testing.T, m watchModel, msg tea.Msg) watchModel {
	t.Helper()
	next, _ := m.Update(msg)
	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return wm
}

func TestWatchModel_ChunkUpdatesOneCell(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "test", nil, nil)

	m = updateWatch(t, m, chunkMsg("RX: 0x0a9 Data: 5e 47 b3 9f 2b b3 3f fb\n"))
	m = updateWatch(t, m, chunkMsg("RX: 0x1ee Data: 04 ff\n"))

	if len(m.cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(m.cells))
	}
	first, second := m.cells[0], m.cells[1]

	// A frame for the second identifier only re-renders its own cell.
	m = updateWatch(t, m, chunkMsg("RX: 0x1ee Data: 04 fe\n"))
	if m.cells[0] != first {
		t.Error("unrelated cell was re-rendered with different content")
	}
	if m.cells[1] == second {
		t.Error("updated cell did not change")
	}
	if m.frames != 3 {
		t.Errorf("frames = %d, want 3", m.frames)
	}
}

func TestWatchModel_ChunkSplitAcrossMessages(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "test", nil, nil)

	m = updateWatch(t, m, chunkMsg("RX: 0x0a9 Data: 5e"))
	if len(m.cells) != 0 {
		t.Fatal("partial line produced a cell")
	}
	m = updateWatch(t, m, chunkMsg(" 47\n"))
	if len(m.cells) != 1 {
		t.Fatalf("cells = %d, want 1", len(m.cells))
	}
}

func TestWatchModel_MalformedLinesIgnored(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "test", nil, nil)
	m = updateWatch(t, m, chunkMsg("garbage\nRX: 0xzz Data: 01\n\n"))

	if len(m.cells) != 0 || m.frames != 0 {
		t.Errorf("malformed input changed state: cells=%d frames=%d", len(m.cells), m.frames)
	}
}

func TestWatchModel_SendCapability(t *testing.T) {
	rw := initialWatchModel(newFakeStream(), "test", nil, nil)
	if !rw.canSend {
		t.Error("writable stream should enable sending")
	}

	ro := initialWatchModel(readOnlyStream{}, "test", nil, nil)
	if ro.canSend {
		t.Error("read-only stream should disable sending")
	}
}

func TestWatchModel_SendWritesWire(t *testing.T) {
	stream := newFakeStream()
	m := initialWatchModel(stream, "test", nil, nil)

	if err := m.send("012:0102030000000000\n"); err != nil {
		t.Fatal(err)
	}
	if len(stream.writes) != 1 || stream.writes[0] != "012:0102030000000000\n" {
		t.Errorf("writes = %v", stream.writes)
	}
}

func TestWatchModel_StreamErrorQuits(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "test", nil, nil)

	next, cmd := m.Update(streamClosedMsg{err: fmt.Errorf("device unplugged")})
	wm := next.(watchModel)

	if !wm.quitting {
		t.Error("model did not quit on stream error")
	}
	if wm.readErr == nil {
		t.Error("read error not recorded")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
}

func TestWatchModel_CleanEOFQuitsWithoutError(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "test", nil, nil)

	next, _ := m.Update(streamClosedMsg{err: io.EOF})
	wm := next.(watchModel)

	if !wm.quitting {
		t.Error("model did not quit on EOF")
	}
	if wm.readErr != nil {
		t.Errorf("EOF recorded as error: %v", wm.readErr)
	}
}

func TestWatchModel_ViewShowsHeaderAndCells(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "Serial: /dev/ttyUSB0 @ 115200 baud", nil, nil)
	m = updateWatch(t, m, tea.WindowSizeMsg{Width: 120, Height: 24})
	m = updateWatch(t, m, chunkMsg("RX: 0x0a9 Data: 5e 47 b3 9f 2b b3 3f fb\n"))

	view := m.View()
	if !strings.Contains(view, "0a9:") {
		t.Errorf("view missing register cell:\n%s", view)
	}
	if !strings.Contains(view, "IDs: 1 Frames: 1") {
		t.Errorf("view missing counters:\n%s", view)
	}
}

func TestWatchModel_ReadOnlyViewHasNoPrompt(t *testing.T) {
	m := initialWatchModel(readOnlyStream{}, "Replay: capture.log", nil, nil)
	m = updateWatch(t, m, tea.WindowSizeMsg{Width: 120, Height: 24})
	m = updateWatch(t, m, chunkMsg("RX: 0x0a9 Data: 5e 47\n"))

	view := m.View()
	if strings.Contains(view, "<id>:<hex bytes...> [repeat <ms>]") {
		t.Error("read-only view renders the command placeholder")
	}
	if strings.Contains(view, "\n> ") {
		t.Error("read-only view renders the command prompt")
	}
	if !strings.Contains(view, "sending disabled") {
		t.Errorf("read-only view missing its header notice:\n%s", view)
	}

	// A writable session does get the prompt on the footer row.
	w := initialWatchModel(newFakeStream(), "test", nil, nil)
	w = updateWatch(t, w, tea.WindowSizeMsg{Width: 120, Height: 24})
	if !strings.Contains(w.View(), "<id>:<hex bytes...>") {
		t.Error("writable view missing the command footer")
	}
}

func TestWatchModel_OffscreenSlotsDropped(t *testing.T) {
	m := initialWatchModel(newFakeStream(), "test", nil, nil)
	// 5 terminal rows leave one grid row, so only slots 0-2 render.
	m = updateWatch(t, m, tea.WindowSizeMsg{Width: 120, Height: 5})

	for _, id := range []string{"100", "101", "102", "103"} {
		m = updateWatch(t, m, chunkMsg("RX: 0x"+id+" Data: 01\n"))
	}

	view := m.View()
	for _, id := range []string{"100:", "101:", "102:"} {
		if !strings.Contains(view, id) {
			t.Errorf("view missing on-screen cell %s", id)
		}
	}
	if strings.Contains(view, "103:") {
		t.Error("off-screen cell rendered")
	}
}
