package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/tui/components"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelDevices Panel = iota
	PanelNowPlaying
	PanelRegions
	PanelHistory

	panelCount
)

// Controller is what the dashboard needs from a running engine. Calls are
// made from bubbletea commands, off the simulation thread.
type Controller interface {
	Snapshot(ctx context.Context) (engine.Snapshot, error)
	ToggleLoop(ctx context.Context, loc core.Location) (bool, error)
	Stop(ctx context.Context, loc core.Location) error
}

// Options configures the dashboard.
type Options struct {
	Refresh time.Duration
	Theme   string
	Title   string
	// Notices, when set, feeds the activity panel.
	Notices <-chan core.Notice
	// Done, when set, is closed when the driving scenario finishes.
	Done <-chan struct{}
}

// Model is the main TUI model
type Model struct {
	ctl  Controller
	opts Options

	width        int
	height       int
	focusedPanel Panel

	snap    engine.Snapshot
	history []core.Notice
	running bool

	devicesView *components.Devices
	nowPlaying  *components.NowPlaying
	regionsView *components.Regions
	historyView *components.History
	spinner     spinner.Model

	showHelp   bool
	filtering  bool
	filter     textinput.Model
	lastError  error
	errorUntil time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(ctl Controller, opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = 250 * time.Millisecond
	}
	if opts.Title == "" {
		opts.Title = "jukebox"
	}

	ti := textinput.New()
	ti.Placeholder = "filter by track, author or location"
	ti.CharLimit = 64
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Playing

	return Model{
		ctl:         ctl,
		opts:        opts,
		running:     opts.Done != nil,
		devicesView: components.NewDevices(),
		nowPlaying:  components.NewNowPlaying(),
		regionsView: components.NewRegions(),
		historyView: components.NewHistory(),
		spinner:     sp,
		filter:      ti,
	}
}

// Messages
type tickMsg time.Time
type snapshotMsg engine.Snapshot
type noticeMsg core.Notice
type doneMsg struct{}
type errMsg error
type refreshAfterActionMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snap, err := m.ctl.Snapshot(ctx)
		if err != nil {
			return errMsg(err)
		}
		return snapshotMsg(snap)
	}
}

func (m Model) waitNotice() tea.Cmd {
	if m.opts.Notices == nil {
		return nil
	}
	ch := m.opts.Notices
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m Model) waitDone() tea.Cmd {
	if m.opts.Done == nil {
		return nil
	}
	done := m.opts.Done
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

func (m Model) toggleLoop(loc core.Location) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.ctl.ToggleLoop(context.Background(), loc); err != nil {
			return errMsg(err)
		}
		return refreshAfterActionMsg{}
	}
}

func (m Model) stopDevice(loc core.Location) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctl.Stop(context.Background(), loc); err != nil {
			return errMsg(err)
		}
		return refreshAfterActionMsg{}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), m.fetchSnapshot(), m.waitNotice(), m.waitDone()}
	if m.running {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tick(), m.fetchSnapshot())

	case snapshotMsg:
		if time.Now().After(m.errorUntil) {
			m.lastError = nil
		}
		m.snap = engine.Snapshot(msg)
		return m, nil

	case noticeMsg:
		m.history = components.Push(m.history, core.Notice(msg))
		return m, m.waitNotice()

	case doneMsg:
		m.running = false
		return m, m.fetchSnapshot()

	case errMsg:
		m.lastError = msg
		m.errorUntil = time.Now().Add(5 * time.Second)
		return m, nil

	case refreshAfterActionMsg:
		return m, m.fetchSnapshot()

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.filtering {
		switch msg.String() {
		case "esc":
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			return m, nil
		case "enter":
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "esc":
		m.filter.SetValue("")
		return m, nil
	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil
	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	case "r":
		return m, m.fetchSnapshot()
	}

	if m.focusedPanel == PanelDevices || m.focusedPanel == PanelNowPlaying {
		switch msg.String() {
		case "j", "down":
			m.devicesView.SelectNext()
		case "k", "up":
			m.devicesView.SelectPrev()
		case "l":
			if dev := m.selected(); dev != nil {
				return m, m.toggleLoop(dev.Location)
			}
		case "x":
			if dev := m.selected(); dev != nil {
				return m, m.stopDevice(dev.Location)
			}
		}
	}

	return m, nil
}

// devices returns the device sessions that pass the filter.
func (m Model) devices() []engine.DeviceView {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if q == "" {
		return m.snap.Devices
	}
	var out []engine.DeviceView
	for _, d := range m.snap.Devices {
		hay := strings.ToLower(d.Name + " " + d.Author + " " + d.TrackID + " " + d.Location.String())
		if strings.Contains(hay, q) {
			out = append(out, d)
		}
	}
	return out
}

func (m Model) selected() *engine.DeviceView {
	devs := m.devices()
	i := m.devicesView.Selected(len(devs))
	if i < 0 {
		return nil
	}
	return &devs[i]
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Left: Devices (top), Now Playing (bottom)
	// Right: Regions (top), Activity (bottom)
	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 45 / 100
	bottomHeight := m.height - topHeight - 3

	devs := m.devices()
	devicesView := m.devicesView.Render(devs, leftWidth-2, topHeight-2, m.focusedPanel == PanelDevices)
	nowPlaying := m.nowPlaying.Render(m.selected(), m.snap.Time, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelNowPlaying)
	regionsView := m.regionsView.Render(m.snap.Regions, m.snap.Mapped, rightWidth-2, topHeight-2, m.focusedPanel == PanelRegions)
	historyView := m.historyView.Render(m.history, m.snap.Time, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, devicesView, nowPlaying)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, regionsView, historyView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), main, m.renderStatusBar())
}

func (m Model) renderHeader() string {
	state := styles.Paused.Render("disabled")
	if m.snap.Enabled {
		state = styles.Playing.Render("enabled")
	}
	header := styles.Title.Render(m.opts.Title) + "  " + state
	if m.running {
		header += "  " + m.spinner.View() + styles.Muted.Render(" running")
	}
	if !m.snap.Time.IsZero() {
		header += "  " + styles.Dim.Render(m.snap.Time.Format("15:04:05.000"))
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(header)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:filter  l:loop  x:stop  tab:switch panel")

	if m.filtering {
		status = m.filter.View()
	} else if v := m.filter.Value(); v != "" {
		status = styles.Muted.Render("filter: "+v) + "  " + status
	}

	if m.lastError != nil {
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Jukebox - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Filter devices
  Esc          Clear filter
  Tab          Next panel
  Shift+Tab    Previous panel
  r            Refresh

  Devices Panel
  ─────────────
  j/↓          Select next
  k/↑          Select previous
  l            Toggle loop mode
  x            Stop session

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctl Controller, opts Options) error {
	styles.SetTheme(opts.Theme)

	model := NewModel(ctl, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
