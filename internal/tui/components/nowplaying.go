package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/marker"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// NowPlaying shows the selected device session in detail
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel. now is used for elapsed time.
func (n *NowPlaying) Render(dev *engine.DeviceView, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if dev == nil {
		content = styles.Muted.Render("Select a device")
	} else {
		content = n.renderSession(dev, now, width-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (n *NowPlaying) renderSession(dev *engine.DeviceView, now time.Time, width int) string {
	label := marker.Label{Name: dev.Name, Author: dev.Author, Looping: dev.Looping}
	labelView := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(styles.Accent).
		Render(label.String())

	elapsed := dev.Elapsed
	if dev.Audible && !dev.Started.IsZero() && now.After(dev.Started) {
		elapsed = now.Sub(dev.Started)
	}

	var progress string
	if dev.Duration > 0 {
		barWidth := width - 14
		if barWidth < 10 {
			barWidth = 10
		}
		pct := float64(elapsed) / float64(dev.Duration) * 100
		progress = fmt.Sprintf("%s %s %s", formatDuration(elapsed), styles.ProgressBar(pct, barWidth), formatDuration(dev.Duration))
	} else {
		progress = fmt.Sprintf("%s %s", formatDuration(elapsed), styles.Dim.Render("(indefinite)"))
	}

	status := "waiting for the area to load"
	if dev.Audible {
		status = "started " + humanize.RelTime(dev.Started, now, "ago", "from now")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		labelView,
		"",
		progress,
		"",
		styles.Muted.Render(fmt.Sprintf("%s  %s", dev.Location.String(), status)),
		styles.Dim.Render(fmt.Sprintf("%d markers  track %s", dev.Markers, dev.TrackID)),
	)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
