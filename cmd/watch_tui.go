// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
	"github.com/ealekseyev/E90RemoteStart/pkg/register"
)

// tickInterval drives the repeat scheduler. Repeat intervals are quantized
// to this resolution.
const tickInterval = 50 * time.Millisecond

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

// chunkMsg carries raw bytes from the reader goroutine, in arrival order.
type chunkMsg []byte

type streamClosedMsg struct {
	err error
}

type watchTickMsg time.Time

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

// watchModel is the Bubble Tea model for the watch TUI. Everything mutable
// lives here and is only touched from Update, which keeps the tick, key and
// chunk handlers strictly ordered.
type watchModel struct {
	conn     Connection
	connInfo string
	canSend  bool

	registry   *register.Registry
	highlights map[string]bool
	frames     uint64

	// cells caches the rendered cell per slot so a frame re-renders
	// exactly one cell.
	cells []string
	buf   canbus.LineBuffer
	pal   palette

	overlay sendOverlay

	width    int
	height   int
	quitting bool
	readErr  error
}

func initialWatchModel(conn Connection, connInfo string, bl register.Blacklist, highlights map[string]bool) watchModel {
	_, canSend := conn.(io.Writer)

	return watchModel{
		conn:       conn,
		connInfo:   connInfo,
		canSend:    canSend,
		registry:   register.NewRegistry(bl),
		highlights: highlights,
		pal:        defaultPalette(),
		overlay:    newSendOverlay(),
		width:      gridColumns * cellWidth,
		height:     24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return watchTickCmd()
}

func watchTickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

//////////////////////////////////////////////////////////////
// Update
//////////////////////////////////////////////////////////////

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchTickMsg:
		m.overlay.tick(time.Time(msg), m.send)
		return m, watchTickCmd()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case chunkMsg:
		m.ingestChunk(msg)

	case streamClosedMsg:
		if !errors.Is(msg.err, io.EOF) && !errors.Is(msg.err, ErrConnectionClosed) {
			m.readErr = msg.err
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m watchModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.canSend {
		// Read-only stream: no overlay, just the quit keys.
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	cmd, quit := m.overlay.handleKey(msg, time.Now(), m.send)
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// ingestChunk splits a raw chunk into lines, applies each well-formed frame
// to the registry and re-renders only the affected cell. Malformed lines
// are dropped without a trace.
func (m *watchModel) ingestChunk(chunk []byte) {
	for _, line := range m.buf.Split(chunk) {
		f, ok := canbus.ParseLine(line)
		if !ok {
			continue
		}

		rec := m.registry.Apply(f)
		m.frames++

		for len(m.cells) <= rec.Slot {
			m.cells = append(m.cells, "")
		}
		m.cells[rec.Slot] = renderCell(rec, m.highlights[rec.ID], m.pal)
	}
}

// send writes one wire frame to the transport.
func (m watchModel) send(wire string) error {
	w, ok := m.conn.(io.Writer)
	if !ok {
		return fmt.Errorf("transport is read-only")
	}
	_, err := w.Write([]byte(wire))
	return err
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	var s strings.Builder

	// Header (three rows, matching the layout constant)
	s.WriteString(titleStyle.Render("CANMON REGISTERS"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | IDs: %d Frames: %d",
		m.connInfo, m.registry.Len(), m.frames)))
	s.WriteString("\n")
	help := "q=quit  <id>:<hex bytes...> [repeat <ms>] + Enter sends"
	if !m.canSend {
		help = "q=quit  (read-only stream, sending disabled)"
	}
	s.WriteString(headerStyle.Render(help))
	s.WriteString("\n\n")

	// Grid. Slots past the bottom edge are silently dropped.
	rows := gridRows(m.height)
	lastRow := -1
	for slot, cell := range m.cells {
		row, col := cellPosition(slot)
		if row >= rows {
			break
		}
		if col == 0 && row > 0 {
			s.WriteString("\n")
		}
		s.WriteString(cell)
		lastRow = row
	}
	if lastRow >= 0 {
		s.WriteString("\n")
	}

	// Pin the footer to the bottom row. A read-only transport has no
	// overlay at all, just the blank reserved line.
	for i := lastRow + 1; i < rows; i++ {
		s.WriteString("\n")
	}
	if m.canSend {
		s.WriteString(m.overlay.view(time.Now()))
	}

	return s.String()
}
