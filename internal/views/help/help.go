// Package help renders the keybinding overlay from markdown.
package help

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/workpulse/focus-tui/internal/theme"
)

const helpMarkdown = `# WorkPulse Focus Timer

The clock you see is computed locally between backend refreshes, so it
ticks smoothly even over a slow connection. The backend stays the source
of truth: every refresh reconciles the local clock against it.

## Keys

| Key | Action |
|-----|--------|
| s | start a session |
| space | pause / resume |
| c | complete (with optional note) |
| x | cancel (with optional note) |
| r | refresh from server |
| ? | toggle this help |
| q | quit |

Sessions with a target duration complete themselves when the clock
reaches it.
`

var stylePanel = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.ColorBorder).
	Padding(0, 1)

// Model caches the rendered help text.
type Model struct {
	rendered string
}

// New renders the help markdown once. Rendering failures fall back to the
// raw markdown rather than an empty overlay.
func New() Model {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(64),
	)
	if err != nil {
		return Model{rendered: helpMarkdown}
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return Model{rendered: helpMarkdown}
	}
	return Model{rendered: out}
}

// View renders the overlay panel.
func (m Model) View() string {
	return stylePanel.Render(m.rendered)
}
