package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Colors, derived from the active catppuccin flavor.
var (
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	TextDim   lipgloss.Color
)

// Text styles
var (
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Label       lipgloss.Style
	Highlight   lipgloss.Style
	Muted       lipgloss.Style
	Dim         lipgloss.Style
	Playing     lipgloss.Style
	Paused      lipgloss.Style
	Looping     lipgloss.Style
	ErrorText   lipgloss.Style
	BorderStyle lipgloss.Style

	FocusedBorder lipgloss.Style
)

type flavor interface {
	Mauve() catppuccin.Color
	Teal() catppuccin.Color
	Peach() catppuccin.Color
	Green() catppuccin.Color
	Yellow() catppuccin.Color
	Red() catppuccin.Color
	Surface2() catppuccin.Color
	Text() catppuccin.Color
	Subtext0() catppuccin.Color
	Overlay0() catppuccin.Color
}

func init() {
	SetTheme("mocha")
}

// SetTheme applies a catppuccin flavor by name. "auto" picks latte or mocha
// from the terminal background.
func SetTheme(name string) {
	var f flavor
	switch name {
	case "latte", "light":
		f = catppuccin.Latte
	case "frappe":
		f = catppuccin.Frappe
	case "macchiato":
		f = catppuccin.Macchiato
	case "auto":
		if lipgloss.HasDarkBackground() {
			f = catppuccin.Mocha
		} else {
			f = catppuccin.Latte
		}
	default:
		f = catppuccin.Mocha
	}

	Primary = lipgloss.Color(f.Mauve().Hex)
	Secondary = lipgloss.Color(f.Teal().Hex)
	Accent = lipgloss.Color(f.Peach().Hex)
	Success = lipgloss.Color(f.Green().Hex)
	Warning = lipgloss.Color(f.Yellow().Hex)
	Error = lipgloss.Color(f.Red().Hex)
	Border = lipgloss.Color(f.Surface2().Hex)
	Text = lipgloss.Color(f.Text().Hex)
	TextMuted = lipgloss.Color(f.Subtext0().Hex)
	TextDim = lipgloss.Color(f.Overlay0().Hex)

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Success)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	Looping = lipgloss.NewStyle().Foreground(Primary)
	ErrorText = lipgloss.NewStyle().Foreground(Error)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for a device session
func StatusIcon(audible bool) string {
	if audible {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// LoopIcon marks looping sessions
func LoopIcon(looping bool) string {
	if looping {
		return Looping.Render("∞")
	}
	return " "
}
