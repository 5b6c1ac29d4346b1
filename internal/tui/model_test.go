package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/critpath/internal/cpm"
)

func testSchedule(t *testing.T) *cpm.Schedule {
	t.Helper()
	s, err := cpm.RescheduleAll([]cpm.Task{
		{ID: "A", Name: "Design", Duration: 3},
		{ID: "B", Name: "Docs", Duration: 2},
		{ID: "C", Name: "Build", Duration: 5, Predecessors: []string{"A"}},
	})
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}
	return s
}

// step feeds msg to m and returns the updated Model.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func sized(t *testing.T) Model {
	t.Helper()
	m, _ := step(t, NewModel("project.toml", nil), tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func TestModel_WaitsForSchedule(t *testing.T) {
	t.Parallel()
	m := sized(t)
	if !strings.Contains(m.View(), "waiting for a schedule") {
		t.Errorf("expected placeholder, got:\n%s", m.View())
	}
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
	if !strings.Contains(m.View(), "scheduling") {
		t.Errorf("status line should show the spinner, got:\n%s", m.View())
	}
}

func TestModel_SpinnerStopsOnSchedule(t *testing.T) {
	t.Parallel()
	m := sized(t)
	tick := m.spinner.Tick()
	if _, cmd := step(t, m, tick); cmd == nil {
		t.Error("spinner should keep ticking while waiting")
	}
	m, _ = step(t, m, MsgSchedule{Schedule: testSchedule(t), At: time.Now()})
	if _, cmd := step(t, m, tick); cmd != nil {
		t.Error("spinner should stop once a schedule is shown")
	}
}

func TestModel_ShowsSchedule(t *testing.T) {
	t.Parallel()
	m := sized(t)
	m, _ = step(t, m, MsgSchedule{Schedule: testSchedule(t), At: time.Now()})

	view := m.View()
	for _, want := range []string{"project.toml", "8 days", "Design", "Build", "updated"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.Stale() {
		t.Error("fresh schedule reported stale")
	}
}

func TestModel_ErrorKeepsLastSchedule(t *testing.T) {
	t.Parallel()
	m := sized(t)
	m, _ = step(t, m, MsgSchedule{Schedule: testSchedule(t), At: time.Now()})
	m, _ = step(t, m, MsgError{Err: errors.New("parsing TOML: boom"), At: time.Now()})

	view := m.View()
	if !strings.Contains(view, "parsing TOML: boom") || !strings.Contains(view, "stale") {
		t.Errorf("error not shown:\n%s", view)
	}
	if !strings.Contains(view, "Design") {
		t.Errorf("last schedule dropped on error:\n%s", view)
	}
	if !m.Stale() {
		t.Error("Stale() = false after error")
	}

	m, _ = step(t, m, MsgSchedule{Schedule: testSchedule(t), At: time.Now()})
	if m.Stale() {
		t.Error("Stale() = true after recovery")
	}
}

func TestModel_FileRemoved(t *testing.T) {
	t.Parallel()
	m := sized(t)
	m, _ = step(t, m, MsgFileRemoved{File: "/tmp/project.toml"})
	if !m.Stale() || !strings.Contains(m.View(), "file removed") {
		t.Errorf("removal not reflected:\n%s", m.View())
	}
}

func TestModel_ToggleGraph(t *testing.T) {
	t.Parallel()
	m := sized(t)
	m, _ = step(t, m, MsgSchedule{Schedule: testSchedule(t), At: time.Now()})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	view := m.View()
	if !strings.Contains(view, "[graph]") || !strings.Contains(view, "Day 0:") {
		t.Errorf("graph view not shown:\n%s", view)
	}
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if strings.Contains(m.View(), "[graph]") {
		t.Error("second toggle should return to the table")
	}
}

func TestModel_Keys(t *testing.T) {
	t.Parallel()

	reloaded := false
	reload := func() tea.Msg {
		reloaded = true
		return MsgSchedule{}
	}
	m, _ := step(t, NewModel("p", reload), tea.WindowSizeMsg{Width: 80, Height: 20})

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("reload key returned no command")
	}
	if _, ok := cmd().(MsgSchedule); !ok || !reloaded {
		t.Error("reload command did not call the reload func")
	}

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not quit")
	}
}

func TestFooter_Compact(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()
	wide := Footer{Width: 120, Bindings: FooterBindings(km)}.View()
	narrow := Footer{Width: 40, Bindings: FooterBindings(km)}.View()
	if !strings.Contains(wide, "reload") {
		t.Errorf("wide footer missing descriptions: %q", wide)
	}
	if strings.Contains(narrow, "reload") {
		t.Errorf("compact footer should drop descriptions: %q", narrow)
	}
}
