package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/watch"
)

// sender is the part of *tea.Program the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// Loader produces the current schedule of the watched project.
type Loader func() (*cpm.Schedule, error)

// Bridge forwards watcher changes to a running program as schedule
// messages. tea.Program.Send is goroutine-safe.
type Bridge struct {
	program sender
	load    Loader
}

// NewBridge creates a bridge that sends messages to p.
func NewBridge(p *tea.Program, load Loader) *Bridge {
	return &Bridge{program: p, load: load}
}

// LoadMsg runs the loader once and wraps the result as a message.
func (b *Bridge) LoadMsg() tea.Msg {
	return loadMsg(b.load)
}

// ReloadFunc adapts load for use as Model.Reload.
func ReloadFunc(load Loader) func() tea.Msg {
	return func() tea.Msg { return loadMsg(load) }
}

func loadMsg(load Loader) tea.Msg {
	s, err := load()
	now := time.Now()
	if err != nil {
		return MsgError{Err: err, At: now}
	}
	return MsgSchedule{Schedule: s, At: now}
}

// Run forwards every change from changes until ctx is done or the channel
// closes.
func (b *Bridge) Run(ctx context.Context, changes <-chan watch.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if c.Kind == watch.ChangeRemoved {
				b.program.Send(MsgFileRemoved{File: c.File})
				continue
			}
			b.program.Send(b.LoadMsg())
		}
	}
}
