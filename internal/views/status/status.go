// Package status renders the one-line status bar: notification channel
// state, sync freshness, and the day's completed-session summary.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/workpulse/focus-tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Width     int
	Connected bool
	LastSync  time.Time
	Stale     bool

	TodaySessions int
	TodayFocused  time.Duration
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● live")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("○ polling")
	}

	var syncStr string
	switch {
	case m.LastSync.IsZero():
		syncStr = theme.StyleDimmed.Render("syncing...")
	case m.Stale:
		syncStr = lipgloss.NewStyle().Foreground(theme.ColorWarning).
			Render("STALE since " + m.LastSync.Format("15:04:05"))
	default:
		syncStr = theme.StyleDimmed.Render("synced " + m.LastSync.Format("15:04:05"))
	}

	today := fmt.Sprintf("today: %d sessions / %s focused",
		m.TodaySessions, formatFocused(m.TodayFocused))

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := strings.Join([]string{connStr, syncStr, today}, sep)

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

// formatFocused renders a focused total as "Nh MMm" or "Nm".
func formatFocused(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes >= 60 {
		return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
