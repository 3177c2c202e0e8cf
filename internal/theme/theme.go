// Package theme provides the Lip Gloss color palette and reusable styles
// for the focus timer TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Timer state colors.
var (
	ColorRunning = lipgloss.Color("#22c55e")
	ColorPaused  = lipgloss.Color("#d97706")
	ColorIdle    = lipgloss.Color("#4b5563")
	ColorDone    = lipgloss.Color("#16a34a")
)

// Progress thresholds.
var (
	ColorProgressLow  = lipgloss.Color("#3b82f6") // <70%
	ColorProgressMid  = lipgloss.Color("#d97706") // 70-90%
	ColorProgressHigh = lipgloss.Color("#dc2626") // >90%
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorAccent  = lipgloss.Color("#a855f7")
)

// StatusColor returns the color for a timer status string.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "running":
		return ColorRunning
	case "paused":
		return ColorPaused
	case "completed":
		return ColorDone
	case "cancelled":
		return ColorDanger
	default:
		return ColorIdle
	}
}

// StatusGlyph returns a Unicode glyph representing a timer status.
func StatusGlyph(status string) string {
	switch status {
	case "running":
		return "▶"
	case "paused":
		return "⏸"
	case "completed":
		return "✓"
	case "cancelled":
		return "✗"
	default:
		return "○"
	}
}

// ProgressColor returns the color for a progress fraction in [0,1].
func ProgressColor(frac float64) lipgloss.Color {
	switch {
	case frac > 0.9:
		return ColorProgressHigh
	case frac > 0.7:
		return ColorProgressMid
	default:
		return ColorProgressLow
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
