package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
)

// SearchType restricts which track field a query matches.
type SearchType int

const (
	SearchAll SearchType = iota
	SearchName
	SearchAuthor
	SearchStyle

	searchTypeCount
)

var searchTabs = []string{"All", "Name", "Author", "Style"}

// Match returns the tracks whose fields selected by typ contain query,
// ignoring case. An empty query matches every track.
func Match(tracks []core.Track, query string, typ SearchType) []core.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return tracks
	}
	var out []core.Track
	for _, t := range tracks {
		var fields []string
		switch typ {
		case SearchName:
			fields = []string{t.Name}
		case SearchAuthor:
			fields = []string{t.Author}
		case SearchStyle:
			fields = []string{t.Style}
		default:
			fields = append([]string{t.ID, t.Name, t.Author}, t.Lore...)
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// SearchModel is the bubbletea model for searching the catalog.
type SearchModel struct {
	title      string
	input      textinput.Model
	tracks     []core.Track
	results    []core.Track
	cursor     int
	searchType SearchType
	selected   *core.Track
	debounce   time.Duration
	lastQuery  string
	width      int
	height     int
}

// Styles
var (
	searchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	searchTabStyle = lipgloss.NewStyle().
			Padding(0, 2)

	searchActiveTabStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("205")).
				Foreground(lipgloss.Color("0"))

	searchResultStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	searchSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	searchSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewSearchModel creates a new track search model.
func NewSearchModel(title string, tracks []core.Track) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search tracks by name, author or lore..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return SearchModel{
		title:      title,
		input:      ti,
		tracks:     tracks,
		results:    tracks,
		debounce:   150 * time.Millisecond,
		searchType: SearchAll,
		width:      80,
		height:     20,
	}
}

// Init initializes the model.
func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// debounceMsg is sent after the debounce period.
type debounceMsg struct {
	query string
}

func (m *SearchModel) refilter() {
	m.results = Match(m.tracks, m.input.Value(), m.searchType)
	m.lastQuery = m.input.Value()
	if m.cursor >= len(m.results) {
		m.cursor = 0
	}
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if len(m.results) > 0 && m.cursor < len(m.results) {
				m.selected = &m.results[m.cursor]
				return m, tea.Quit
			}

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			m.searchType = (m.searchType + 1) % searchTypeCount
			m.refilter()
			return m, nil

		case "shift+tab":
			m.searchType = (m.searchType + searchTypeCount - 1) % searchTypeCount
			m.refilter()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case debounceMsg:
		if msg.query == m.input.Value() && msg.query != m.lastQuery {
			m.refilter()
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	if m.input.Value() != m.lastQuery {
		query := m.input.Value()
		cmds = append(cmds, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(searchTitleStyle.Render("🔍 " + m.title))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, tab := range searchTabs {
		if SearchType(i) == m.searchType {
			b.WriteString(searchActiveTabStyle.Render(tab))
		} else {
			b.WriteString(searchTabStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		b.WriteString("No matching tracks")
	} else {
		maxResults := m.height - 10
		if maxResults < 5 {
			maxResults = 5
		}
		for i, t := range m.results {
			if i >= maxResults {
				b.WriteString(searchSubtitleStyle.Render("  ...and more"))
				break
			}

			line := t.Name + " " + searchSubtitleStyle.Render(fmt.Sprintf("by %s (%s)", t.Author, t.ID))
			if i == m.cursor {
				b.WriteString(searchSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(searchResultStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(searchSubtitleStyle.Render("↑/↓ navigate • tab switch field • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected track, or nil if none.
func (m SearchModel) Selected() *core.Track {
	return m.selected
}

// RunSearch runs the track search and returns the selected track.
func RunSearch(title string, tracks []core.Track) (*core.Track, error) {
	model := NewSearchModel(title, tracks)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
