package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
)

// Formatter formats session notices for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	color         bool
	palette       flavor
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

type flavor interface {
	Green() catppuccin.Color
	Mauve() catppuccin.Color
	Red() catppuccin.Color
	Overlay1() catppuccin.Color
}

// paletteFor resolves a catppuccin flavor by name. Unknown names get mocha.
func paletteFor(name string) flavor {
	switch name {
	case "latte", "light":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

// WithColor colours descriptions using the named catppuccin flavor.
func WithColor(theme string) FormatterOption {
	return func(f *Formatter) {
		f.color = true
		f.palette = paletteFor(theme)
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji: true,
		palette:   catppuccin.Mocha,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats a notice as a string.
func (f *Formatter) Format(n core.Notice) string {
	if f.template != nil {
		return f.formatTemplate(n)
	}
	return f.formatLine(n)
}

func (f *Formatter) formatLine(n core.Notice) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, n.Time.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, noticeEmoji(n.Kind))
	}

	desc := Describe(n)
	if f.color {
		desc = lipgloss.NewStyle().Foreground(f.kindColor(n.Kind)).Render(desc)
	}
	parts = append(parts, desc)

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(n core.Notice) string {
	data := templateData{
		Kind:      n.Kind.String(),
		Emoji:     noticeEmoji(n.Kind),
		Timestamp: n.Time,
		Time:      n.Time.Format("15:04:05"),
		Player:    string(n.Player),
		Region:    n.Region,
		Track:     n.TrackID,
		Name:      n.Name,
		Author:    n.Author,
		Looping:   n.Looping,
		Reason:    n.Reason,
	}
	if n.Location != nil {
		data.Location = n.Location.String()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(n)
	}
	return buf.String()
}

type templateData struct {
	Kind      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Location  string
	Player    string
	Region    string
	Track     string
	Name      string
	Author    string
	Looping   bool
	Reason    string
}

// Describe returns a human-readable description of a notice.
func Describe(n core.Notice) string {
	where := ""
	if n.Location != nil {
		where = " at " + n.Location.String()
	}
	title := n.Name
	if title == "" {
		title = n.TrackID
	}

	switch n.Kind {
	case core.NoticeDeviceStarted:
		return fmt.Sprintf("Now playing%s: %s by %s", where, title, n.Author)
	case core.NoticeDeviceLooped:
		return fmt.Sprintf("Looped%s: %s", where, title)
	case core.NoticeDeviceStopped:
		return fmt.Sprintf("Stopped%s: %s (%s)", where, title, n.Reason)
	case core.NoticeMarkersRespawned:
		return fmt.Sprintf("Markers respawned%s", where)
	case core.NoticeLoopToggled:
		if n.Looping {
			return fmt.Sprintf("Looping enabled%s", where)
		}
		return fmt.Sprintf("Looping disabled%s", where)
	case core.NoticeRegionEntered:
		return fmt.Sprintf("%s entered %s: %s by %s", n.Player, n.Region, title, n.Author)
	case core.NoticeRegionLooped:
		return fmt.Sprintf("%s replaying %s in %s", n.Player, title, n.Region)
	case core.NoticeRegionLeft:
		return fmt.Sprintf("%s left %s", n.Player, n.Region)
	default:
		return "Unknown notice"
	}
}

func noticeEmoji(k core.NoticeKind) string {
	switch k {
	case core.NoticeDeviceStarted:
		return "🎵"
	case core.NoticeDeviceLooped, core.NoticeRegionLooped:
		return "🔁"
	case core.NoticeDeviceStopped:
		return "⏹️"
	case core.NoticeMarkersRespawned:
		return "🪧"
	case core.NoticeLoopToggled:
		return "∞"
	case core.NoticeRegionEntered:
		return "🗺️"
	case core.NoticeRegionLeft:
		return "🚪"
	default:
		return "❓"
	}
}

func (f *Formatter) kindColor(k core.NoticeKind) lipgloss.Color {
	var c catppuccin.Color
	switch k {
	case core.NoticeDeviceStarted, core.NoticeRegionEntered:
		c = f.palette.Green()
	case core.NoticeDeviceLooped, core.NoticeRegionLooped, core.NoticeLoopToggled:
		c = f.palette.Mauve()
	case core.NoticeDeviceStopped, core.NoticeRegionLeft:
		c = f.palette.Red()
	default:
		c = f.palette.Overlay1()
	}
	return lipgloss.Color(c.Hex)
}
