package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
)

// LocationModel is the bubbletea model for picking a device location.
type LocationModel struct {
	title    string
	locs     []core.Location
	cursor   int
	selected *core.Location
	width    int
	height   int
}

// Styles for the location picker
var (
	locationTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	locationItemStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	locationSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	locationWorldStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewLocationModel creates a new location picker model.
func NewLocationModel(title string, locs []core.Location) LocationModel {
	return LocationModel{
		title:  title,
		locs:   locs,
		width:  80,
		height: 20,
	}
}

// Init initializes the model.
func (m LocationModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m LocationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if len(m.locs) > 0 && m.cursor < len(m.locs) {
				m.selected = &m.locs[m.cursor]
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.locs)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			if len(m.locs) > 0 {
				m.cursor = len(m.locs) - 1
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m LocationModel) View() string {
	var b strings.Builder

	b.WriteString(locationTitleStyle.Render("📍 " + m.title))
	b.WriteString("\n\n")

	if len(m.locs) == 0 {
		b.WriteString(locationWorldStyle.Render("No locations"))
	} else {
		for i, loc := range m.locs {
			line := locationWorldStyle.Render(loc.World+" ") +
				strings.TrimPrefix(loc.String(), loc.World)
			if i == m.cursor {
				b.WriteString(locationSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(locationItemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(locationWorldStyle.Render("↑/↓ navigate • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected location, or nil if none.
func (m LocationModel) Selected() *core.Location {
	return m.selected
}

// RunLocationPicker runs the picker and returns the selected location.
func RunLocationPicker(title string, locs []core.Location) (*core.Location, error) {
	model := NewLocationModel(title, locs)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(LocationModel).Selected(), nil
}
