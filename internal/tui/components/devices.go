package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// Devices lists active device sessions
type Devices struct {
	selected int
}

// NewDevices creates a new Devices component
func NewDevices() *Devices {
	return &Devices{}
}

// SelectNext selects the next session
func (d *Devices) SelectNext() {
	d.selected++
}

// SelectPrev selects the previous session
func (d *Devices) SelectPrev() {
	if d.selected > 0 {
		d.selected--
	}
}

// Selected returns the selected index, clamped to n sessions. It returns -1
// when there are none.
func (d *Devices) Selected(n int) int {
	if n == 0 {
		return -1
	}
	if d.selected >= n {
		d.selected = n - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
	return d.selected
}

// Render renders the devices panel
func (d *Devices) Render(devices []engine.DeviceView, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Devices (%d)", len(devices)), focused)

	var content string
	if len(devices) == 0 {
		content = styles.Muted.Render("No jukebox is playing")
	} else {
		content = d.renderDevices(devices, width-4, height-4, focused)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (d *Devices) renderDevices(devices []engine.DeviceView, width, maxLines int, focused bool) string {
	sel := d.Selected(len(devices))
	lines := make([]string, 0, len(devices))

	for i, dev := range devices {
		selector := "  "
		if focused && i == sel {
			selector = "▸ "
		}

		name := truncate(dev.Name, width-30)
		if focused && i == sel {
			name = styles.Highlight.Render(name)
		}

		line := fmt.Sprintf("%s%s %s %-22s %s",
			selector,
			styles.StatusIcon(dev.Audible),
			styles.LoopIcon(dev.Looping),
			dev.Location.String(),
			name,
		)
		lines = append(lines, line)

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
