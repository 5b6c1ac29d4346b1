package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/ui"
)

// Chrome heights around the viewport.
const (
	statusHeight = 1
	footerHeight = 2
)

// Model is the live schedule view. It renders whatever the last
// MsgSchedule carried and never computes a schedule itself.
type Model struct {
	Title string
	Keys  KeyMap
	// Reload, if set, is run as a command when the reload key is pressed.
	// It should return a MsgSchedule or MsgError.
	Reload func() tea.Msg

	viewport viewport.Model
	spinner  spinner.Model
	schedule *cpm.Schedule
	err      error
	removed  bool
	updated  time.Time
	graph    bool
	width    int
	height   int
}

// NewModel creates a live view titled with the project's name or path.
func NewModel(title string, reload func() tea.Msg) Model {
	keys := DefaultKeyMap()
	vp := viewport.New(80, 20)
	vp.KeyMap.Up = keys.Up
	vp.KeyMap.Down = keys.Down
	vp.KeyMap.PageUp = keys.PageUp
	vp.KeyMap.PageDown = keys.PageDown
	return Model{
		Title:    title,
		Keys:     keys,
		Reload:   reload,
		viewport: vp,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleStatusDim)),
	}
}

// Init requests the first schedule and starts the loading spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reloadCmd(), m.spinner.Tick)
}

func (m Model) reloadCmd() tea.Cmd {
	if m.Reload == nil {
		return nil
	}
	return m.Reload
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-statusHeight-footerHeight)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Toggle):
			m.graph = !m.graph
			m.refresh()
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.Keys.Reload):
			return m, m.reloadCmd()
		case key.Matches(msg, m.Keys.Top):
			m.viewport.GotoTop()
			return m, nil
		}
		// Scrolling keys fall through to the viewport, which shares our bindings.

	case MsgSchedule:
		m.schedule = msg.Schedule
		m.err = nil
		m.removed = false
		m.updated = msg.At
		m.refresh()
		return m, nil

	case MsgError:
		m.err = msg.Err
		m.updated = msg.At
		m.refresh()
		return m, nil

	case MsgFileRemoved:
		m.removed = true
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		// The spinner only runs until the first schedule or error arrives.
		if m.schedule != nil || m.err != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the viewport content from the current state.
func (m *Model) refresh() {
	var content string
	if m.err != nil {
		content = styleErrorPanel.Render(m.err.Error()) + "\n"
	}
	switch {
	case m.schedule == nil:
		content += "waiting for a schedule…"
	case m.graph:
		content += (&ui.GraphRenderer{UseColor: true}).Render(m.schedule)
	default:
		bar := m.width / 3
		if bar <= 0 {
			bar = ui.DefaultBarWidth
		}
		content += ui.RenderSchedule(m.schedule, ui.TableOptions{Color: true, BarWidth: bar})
	}
	m.viewport.SetContent(content)
}

// Stale reports whether the displayed schedule no longer matches the file.
func (m Model) Stale() bool {
	return m.err != nil || m.removed
}

// View renders the status bar, the schedule and the footer.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusLine(),
		m.viewport.View(),
		Footer{Width: m.width, Bindings: FooterBindings(m.Keys)}.View(),
	)
}

func (m Model) statusLine() string {
	line := styleStatusTitle.Render(m.Title)
	switch {
	case m.removed:
		line += styleStatusErr.Render("  file removed (stale)")
	case m.err != nil:
		line += styleStatusErr.Render("  error (stale)")
	case m.schedule != nil:
		line += styleStatusOK.Render(fmt.Sprintf("  %d days", m.schedule.ProjectDuration))
	default:
		line += "  " + m.spinner.View() + styleStatusDim.Render(" scheduling")
	}
	if !m.updated.IsZero() {
		line += styleStatusDim.Render("  updated " + m.updated.Format(time.TimeOnly))
	}
	if m.graph {
		line += styleStatusDim.Render("  [graph]")
	}
	return styleStatusBar.Width(m.width).Render(line)
}
