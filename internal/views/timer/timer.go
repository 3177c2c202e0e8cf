// Package timer renders the focus timer card. The card is a pure consumer:
// it never computes or stores elapsed time, it renders the value the
// reconciliation engine produced for this frame.
package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/workpulse/focus-tui/internal/theme"
)

const (
	panelWidth = 46
	barWidth   = 40
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 2)

	styleClock = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleTag = lipgloss.NewStyle().
			Foreground(theme.ColorAccent)
)

// Model holds the timer card state for one frame.
type Model struct {
	Status          string // "running", "paused", "idle"
	Tag             string
	Elapsed         time.Duration
	DurationMinutes int

	bar progress.Model
}

// New creates a timer card.
func New() Model {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return Model{Status: "idle", bar: bar}
}

// View renders the card.
func (m Model) View() string {
	var lines []string

	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.StatusColor(m.Status)).
		Render(theme.StatusGlyph(m.Status) + " " + strings.ToUpper(m.Status))
	lines = append(lines, badge)

	if m.Status == "idle" {
		lines = append(lines,
			styleClock.Render(FormatElapsed(0)),
			theme.StyleDimmed.Render("press s to start a session"),
		)
		return stylePanel.Width(panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	lines = append(lines, styleClock.Render(FormatElapsed(m.Elapsed)))
	if m.Tag != "" {
		lines = append(lines, styleTag.Render(m.Tag))
	}

	if m.DurationMinutes > 0 {
		frac := Fraction(m.Elapsed, m.DurationMinutes)
		target := time.Duration(m.DurationMinutes) * time.Minute
		lines = append(lines,
			m.bar.ViewAs(frac),
			theme.StyleDimmed.Render(fmt.Sprintf("target %s (%d%%)", FormatElapsed(target), int(frac*100))),
		)
	} else {
		lines = append(lines, theme.StyleDimmed.Render("untimed session"))
	}

	return stylePanel.Width(panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// FormatElapsed renders a duration as MM:SS, or HH:MM:SS from one hour up.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Fraction returns elapsed/(duration) clamped to [0,1]. Zero for untimed
// sessions.
func Fraction(elapsed time.Duration, durationMinutes int) float64 {
	if durationMinutes <= 0 {
		return 0
	}
	frac := float64(elapsed) / float64(time.Duration(durationMinutes)*time.Minute)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
