package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// Regions lists players hearing region music
type Regions struct{}

// NewRegions creates a new Regions component
func NewRegions() *Regions {
	return &Regions{}
}

// Render renders the regions panel
func (r *Regions) Render(regions []engine.RegionView, mapped, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Regions (%d mapped)", mapped), focused)

	var content string
	if len(regions) == 0 {
		content = styles.Muted.Render("No player is in a mapped region")
	} else {
		lines := make([]string, 0, len(regions))
		for i, v := range regions {
			if i >= height-4 {
				break
			}
			track := v.Name
			if track == "" {
				track = styles.ErrorText.Render(v.TrackID + " (missing)")
			}
			lines = append(lines, fmt.Sprintf("%s %s %s %s",
				styles.Subtitle.Render(string(v.Player)),
				styles.Dim.Render("in"),
				styles.Highlight.Render(v.Region),
				truncate(track, width-20),
			))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}
