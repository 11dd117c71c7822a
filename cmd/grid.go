// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
	"github.com/ealekseyev/E90RemoteStart/pkg/register"
)

//////////////////////////////////////////////////////////////
// Layout
//////////////////////////////////////////////////////////////

// The register view is a fixed grid. Three columns of 40-wide cells, three
// header rows, and the last terminal row reserved for the send overlay.
// Identifiers past the bottom edge are not rendered.
const (
	gridColumns  = 3
	cellWidth    = 40
	headerHeight = 3
	footerHeight = 1
)

// cellPosition maps a registry slot to its grid row and column.
func cellPosition(slot int) (row, col int) {
	return slot / gridColumns, slot % gridColumns
}

// gridRows returns how many cell rows fit in a terminal of the given height.
func gridRows(height int) int {
	rows := height - headerHeight - footerHeight
	if rows < 0 {
		rows = 0
	}
	return rows
}

//////////////////////////////////////////////////////////////
// Cell rendering
//////////////////////////////////////////////////////////////

// palette holds the styles a cell is painted with. Tests pass the zero
// value to get unstyled text.
type palette struct {
	label   lipgloss.Style // identifier
	special lipgloss.Style // identifier on the highlight list
	normal  lipgloss.Style // unchanged nibble
	changed lipgloss.Style // nibble that changed on the last update
}

func defaultPalette() palette {
	return palette{
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		special: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		normal:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		changed: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
	}
}

// renderCell paints one identifier's register cell, nibble by nibble, and
// pads it to the fixed cell width. Each payload byte renders as its two
// nibble characters with changed nibbles highlighted individually.
func renderCell(rec *register.Record, special bool, pal palette) string {
	var b strings.Builder

	idStyle := pal.label
	if special {
		idStyle = pal.special
	}
	b.WriteString(idStyle.Render(rec.ID + ":"))

	for i := 0; i < canbus.NibbleCount; i++ {
		if i%2 == 0 {
			b.WriteByte(' ')
		}
		ch := string(canbus.NibbleAt(rec.Data, i))
		if rec.Mask[i] {
			b.WriteString(pal.changed.Render(ch))
		} else {
			b.WriteString(pal.normal.Render(ch))
		}
	}

	cell := b.String()
	if pad := cellWidth - lipgloss.Width(cell); pad > 0 {
		cell += strings.Repeat(" ", pad)
	}
	return cell
}
