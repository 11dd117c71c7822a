// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
)

// feedbackTTL is how long a transient overlay message stays relevant. A
// stale message is cleared by the next keypress rather than on a timer.
const feedbackTTL = 3 * time.Second

// repeatJob is a periodic transmission in flight. nextDue is wall-clock;
// the scheduler fires at most one send per tick, so the effective period
// never goes below the tick interval.
type repeatJob struct {
	wire     string
	interval time.Duration
	nextDue  time.Time
	sent     uint64
}

// sendOverlay is the one-line command footer of the watch TUI. The buffer
// is empty (idle), holds a command being composed, or is locked out while
// a repeat job runs.
type sendOverlay struct {
	input      textinput.Model
	feedback   string
	feedbackAt time.Time
	job        *repeatJob
}

func newSendOverlay() sendOverlay {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "<id>:<hex bytes...> [repeat <ms>]"
	ti.CharLimit = 80
	ti.Focus()
	return sendOverlay{input: ti}
}

func (o *sendOverlay) setFeedback(now time.Time, text string) {
	o.feedback = text
	o.feedbackAt = now
}

func (o *sendOverlay) repeating() bool {
	return o.job != nil
}

// handleKey processes one keypress. It returns a command for the textinput
// cursor plus whether the program should quit: quitting is only allowed
// with no repeat running and an empty buffer, so a stray q while composing
// is just text.
func (o *sendOverlay) handleKey(msg tea.KeyMsg, now time.Time, send func(string) error) (tea.Cmd, bool) {
	if o.feedback != "" && now.Sub(o.feedbackAt) > feedbackTTL {
		o.feedback = ""
	}

	if o.job != nil {
		// Any of the dismissal keys stops the repeat; everything else is
		// ignored until it stops.
		switch msg.String() {
		case "enter", "esc", "q", "ctrl+c":
			o.cancelRepeat(now)
		}
		return nil, false
	}

	switch msg.String() {
	case "q":
		if o.input.Value() == "" {
			return nil, true
		}

	case "ctrl+c":
		if o.input.Value() == "" {
			return nil, true
		}
		o.input.SetValue("")
		return nil, false

	case "esc":
		o.input.SetValue("")
		return nil, false

	case "enter":
		o.submit(now, send)
		return nil, false
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return cmd, false
}

// submit parses and transmits the composed command. A parse or send error
// becomes feedback and keeps the buffer for correction.
func (o *sendOverlay) submit(now time.Time, send func(string) error) {
	text := o.input.Value()
	if strings.TrimSpace(text) == "" {
		return
	}

	cmd, err := canbus.ParseSendCommand(text)
	if err != nil {
		o.setFeedback(now, err.Error())
		return
	}

	if err := send(cmd.Wire()); err != nil {
		o.setFeedback(now, fmt.Sprintf("send failed: %v", err))
		return
	}

	o.input.SetValue("")
	if cmd.Repeats() {
		o.job = &repeatJob{
			wire:     cmd.Wire(),
			interval: cmd.Interval,
			nextDue:  now.Add(cmd.Interval),
			sent:     1,
		}
		o.setFeedback(now, fmt.Sprintf("Repeating %s every %dms (Enter/Esc stops)",
			cmd.Frame(), cmd.Interval/time.Millisecond))
	} else {
		o.setFeedback(now, "Sent "+cmd.Frame())
	}
}

// tick runs the repeat scheduler. At most one frame goes out per tick; a
// send failure cancels the job and surfaces as feedback.
func (o *sendOverlay) tick(now time.Time, send func(string) error) {
	if o.job == nil || now.Before(o.job.nextDue) {
		return
	}

	if err := o.job.send(send); err != nil {
		o.setFeedback(now, fmt.Sprintf("send failed after %d frames: %v", o.job.sent, err))
		o.job = nil
		return
	}

	// Plain increment keeps the original cadence. After a stall the job
	// catches up one send per tick until the schedule is current again.
	o.job.nextDue = o.job.nextDue.Add(o.job.interval)
}

func (j *repeatJob) send(send func(string) error) error {
	if err := send(j.wire); err != nil {
		return err
	}
	j.sent++
	return nil
}

func (o *sendOverlay) cancelRepeat(now time.Time) {
	o.setFeedback(now, fmt.Sprintf("Stopped. Total sent: %d", o.job.sent))
	o.job = nil
}

// view renders the footer line. Feedback appears next to the input so a
// rejected command stays visible for correction.
func (o *sendOverlay) view(now time.Time) string {
	if o.job != nil {
		return fmt.Sprintf("Repeating every %dms, sent %d (Enter/Esc stops)",
			o.job.interval/time.Millisecond, o.job.sent)
	}

	line := o.input.View()
	if o.feedback != "" && now.Sub(o.feedbackAt) <= feedbackTTL {
		line += "  " + o.feedback
	}
	return line
}
