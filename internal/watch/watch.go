// Package watch reports edits to a single project file. It watches the
// file's directory rather than the file itself so that editors which save
// by writing a temp file and renaming it over the original are still seen.
// Bursts of events are debounced into one Change.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when NewWatcher is given zero.
const DefaultDebounce = 150 * time.Millisecond

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // File written or replaced
	ChangeRemoved                    // File no longer exists
)

// String returns a lower-case name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("change(%d)", int(k))
	}
}

// Change represents a settled change to the watched file.
type Change struct {
	Kind ChangeKind
	File string // Absolute path
	At   time.Time
}

// Watcher monitors one file for changes using fsnotify.
type Watcher struct {
	File    string
	Changes <-chan Change // Read-only external channel
	Errors  <-chan error  // Non-fatal watch errors; dropped if nobody reads

	changes  chan Change
	errs     chan error
	debounce time.Duration
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for path. A zero or negative debounce uses
// DefaultDebounce.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	ch := make(chan Change, 16)
	errs := make(chan error, 4)
	return &Watcher{
		File:     abs,
		Changes:  ch,
		Errors:   errs,
		changes:  ch,
		errs:     errs,
		debounce: debounce,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching. The file's directory must exist; the file itself
// may be created later.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.File), err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and its channels. It is safe to call more than
// once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		w.watcher.Close()
		<-w.done
		close(w.changes)
		close(w.errs)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.quit:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case now := <-ticker.C:
			if !pending.IsZero() && now.Sub(pending) >= w.debounce {
				pending = time.Time{}
				w.emit(Change{Kind: w.currentKind(), File: w.File, At: now})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// currentKind decides the settled state by looking at the file itself, so
// a remove followed by a re-create within one window reads as a modify.
func (w *Watcher) currentKind() ChangeKind {
	if _, err := os.Stat(w.File); errors.Is(err, os.ErrNotExist) {
		return ChangeRemoved
	}
	return ChangeModified
}

func (w *Watcher) emit(c Change) {
	select {
	case w.changes <- c:
	case <-w.quit:
	}
}
