// Package control renders the timer control popup: the start form and the
// optional-note form for completing or cancelling a session.
package control

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/workpulse/focus-tui/internal/theme"
)

const panelWidth = 46

// Mode identifies which form the popup shows.
type Mode int

const (
	ModeHidden Mode = iota
	ModeStart
	ModeNote
)

// Op is the mutation a note form belongs to.
type Op string

const (
	OpComplete Op = "complete"
	OpCancel   Op = "cancel"
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(theme.ColorAccent).
			Padding(0, 2)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)
)

// Model holds the popup state.
type Model struct {
	mode      Mode
	op        Op
	sessionID string

	tagInput      textinput.Model
	durationInput textinput.Model
	noteInput     textinput.Model
	focus         int

	// Err is the inline error line: a rejected input or a failed mutation
	// awaiting retry.
	Err string
}

// New creates a hidden popup.
func New() Model {
	return Model{
		mode:          ModeHidden,
		tagInput:      newInput("Task: ", "what are you working on?"),
		durationInput: newInput("Minutes: ", "0 = untimed"),
		noteInput:     newInput("Note: ", "optional"),
	}
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Mode returns the active form.
func (m Model) Mode() Mode { return m.mode }

// Visible reports whether the popup is shown.
func (m Model) Visible() bool { return m.mode != ModeHidden }

// Op returns the mutation a note form belongs to.
func (m Model) Op() Op { return m.op }

// SessionID returns the session the note form targets.
func (m Model) SessionID() string { return m.sessionID }

// ShowStart opens the start form with the duration prefilled.
func (m *Model) ShowStart(defaultDurationMinutes int) tea.Cmd {
	m.mode = ModeStart
	m.Err = ""
	m.focus = 0
	m.tagInput.SetValue("")
	m.durationInput.SetValue(strconv.Itoa(defaultDurationMinutes))
	m.durationInput.Blur()
	return m.tagInput.Focus()
}

// ShowNote opens the note form for the given mutation and session.
func (m *Model) ShowNote(op Op, sessionID string) tea.Cmd {
	m.mode = ModeNote
	m.op = op
	m.sessionID = sessionID
	m.Err = ""
	m.noteInput.SetValue("")
	return m.noteInput.Focus()
}

// Hide closes the popup.
func (m *Model) Hide() {
	m.mode = ModeHidden
	m.Err = ""
	m.tagInput.Blur()
	m.durationInput.Blur()
	m.noteInput.Blur()
}

// StartValues parses the start form. The tag is not validated here: empty
// task names are rejected by the API client before any network call and
// surfaced through Err.
func (m Model) StartValues() (tag string, durationMinutes int, ok bool) {
	tag = strings.TrimSpace(m.tagInput.Value())
	raw := strings.TrimSpace(m.durationInput.Value())
	if raw == "" {
		return tag, 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return tag, n, true
}

// Note returns the trimmed note text.
func (m Model) Note() string {
	return strings.TrimSpace(m.noteInput.Value())
}

// Update routes key and blink messages to the focused input. Enter and
// escape are the app's to handle.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, isKey := msg.(tea.KeyMsg); isKey && m.mode == ModeStart {
		switch key.Type {
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyDown, tea.KeyUp:
			m.focus = 1 - m.focus
			if m.focus == 0 {
				m.durationInput.Blur()
				return m, m.tagInput.Focus()
			}
			m.tagInput.Blur()
			return m, m.durationInput.Focus()
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeStart:
		if m.focus == 0 {
			m.tagInput, cmd = m.tagInput.Update(msg)
		} else {
			m.durationInput, cmd = m.durationInput.Update(msg)
		}
	case ModeNote:
		m.noteInput, cmd = m.noteInput.Update(msg)
	}
	return m, cmd
}

// View renders the active form.
func (m Model) View() string {
	if m.mode == ModeHidden {
		return ""
	}

	var lines []string
	switch m.mode {
	case ModeStart:
		lines = append(lines,
			styleTitle.Render("Start focus session"),
			"",
			m.tagInput.View(),
			m.durationInput.View(),
		)
	case ModeNote:
		title := "Complete session"
		if m.op == OpCancel {
			title = "Cancel session"
		}
		lines = append(lines,
			styleTitle.Render(title),
			"",
			m.noteInput.View(),
		)
	}

	if m.Err != "" {
		lines = append(lines, "", theme.StyleError.Render(m.Err))
	}
	lines = append(lines, "", theme.StyleDimmed.Render("enter:confirm  esc:dismiss"))

	return stylePanel.Width(panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
