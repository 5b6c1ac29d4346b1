// Package project reads and writes critpath project files: a TOML document
// with a [project] table and one [[task]] table per task.
//
//	[project]
//	name  = "Website relaunch"
//	start = 2026-11-02
//
//	[[task]]
//	id       = "design"
//	duration = 3
//
//	[[task]]
//	id       = "build"
//	duration = 5
//	after    = ["design"]
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/critpath/internal/cpm"
)

// Sentinel errors for project file loading.
var (
	// ErrDuplicateID indicates two tasks in the file share an ID.
	ErrDuplicateID = errors.New("duplicate task ID")
	// ErrInvalid indicates a field failed validation.
	ErrInvalid = errors.New("invalid project file")
)

// File is the decoded form of a project file.
type File struct {
	Project Info   `toml:"project"`
	Tasks   []Task `toml:"task" validate:"dive"`
}

// Info holds project-level metadata.
type Info struct {
	Name string `toml:"name" validate:"max=255"`
	// Start is day 0 of the schedule. When unset the earliest task start
	// is used.
	Start *toml.LocalDate `toml:"start,omitempty"`
}

// Task is one [[task]] table.
type Task struct {
	ID       string          `toml:"id" validate:"required,max=128,excludesall= \t\n"`
	Name     string          `toml:"name,omitempty" validate:"max=255"`
	Duration int             `toml:"duration" validate:"gte=0"`
	Start    *toml.LocalDate `toml:"start,omitempty"`
	Group    bool            `toml:"group,omitempty"`
	After    []string        `toml:"after,omitempty" validate:"dive,required"`
}

// Load reads and validates the project file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a project file. Unknown keys are rejected so
// that typos such as "afer" do not silently drop dependencies.
func Parse(data []byte) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints and ID uniqueness. Dependency cycles
// are not checked here; see cpm.Validate.
func (f *File) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}

	seen := make(map[string]bool, len(f.Tasks))
	for _, t := range f.Tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Save writes the file atomically (write temp + rename).
func (f *File) Save(path string) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp project file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming project file: %w", err)
	}
	return nil
}

// EngineTasks converts the file's tasks to the scheduler's input form.
func (f *File) EngineTasks() []cpm.Task {
	out := make([]cpm.Task, len(f.Tasks))
	for i, t := range f.Tasks {
		out[i] = cpm.Task{
			ID:           t.ID,
			Name:         t.Name,
			Duration:     t.Duration,
			StartDate:    dateToTime(t.Start),
			IsGroup:      t.Group,
			Predecessors: append([]string(nil), t.After...),
		}
	}
	return out
}

// SetEngineTasks replaces the file's tasks with tasks, typically after a
// dependency was accepted by the gate.
func (f *File) SetEngineTasks(tasks []cpm.Task) {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Task{
			ID:       t.ID,
			Name:     t.Name,
			Duration: t.Duration,
			Start:    timeToDate(t.StartDate),
			Group:    t.IsGroup,
			After:    append([]string(nil), t.Predecessors...),
		}
	}
	f.Tasks = out
}

// Schedule runs the CPM passes over the file's tasks. A declared project
// start overrides the anchor derived from task starts.
func (f *File) Schedule() (*cpm.Schedule, error) {
	s, err := cpm.RescheduleAll(f.EngineTasks())
	if err != nil {
		return nil, err
	}
	if start := f.StartDate(); !start.IsZero() {
		s.Anchor = start
	}
	return s, nil
}

// StartDate returns the declared project start, or the zero time.
func (f *File) StartDate() time.Time {
	return dateToTime(f.Project.Start)
}

// SetStartDate sets the declared project start; the zero time clears it.
func (f *File) SetStartDate(t time.Time) {
	f.Project.Start = timeToDate(t)
}

func dateToTime(d *toml.LocalDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.AsTime(time.UTC)
}

func timeToDate(t time.Time) *toml.LocalDate {
	if t.IsZero() {
		return nil
	}
	y, m, d := t.Date()
	return &toml.LocalDate{Year: y, Month: int(m), Day: d}
}
