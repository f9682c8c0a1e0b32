package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/tail"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// MaxHistory bounds the notice log
const MaxHistory = 100

// History shows recent session notices, newest first
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Push adds a notice to the front of entries.
func Push(entries []core.Notice, n core.Notice) []core.Notice {
	entries = append([]core.Notice{n}, entries...)
	if len(entries) > MaxHistory {
		entries = entries[:MaxHistory]
	}
	return entries
}

// Render renders the history panel
func (h *History) Render(entries []core.Notice, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Activity", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("Nothing yet")
	} else {
		lines := make([]string, 0, height)
		for i, n := range entries {
			if i >= height-4 {
				break
			}
			ago := humanize.RelTime(n.Time, now, "ago", "from now")
			text := truncate(tail.Describe(n), width-len(ago)-3)
			pad := width - lipgloss.Width(text) - len(ago) - 1
			if pad < 1 {
				pad = 1
			}
			lines = append(lines, text+lipgloss.NewStyle().Width(pad).Render("")+styles.Dim.Render(ago))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}
