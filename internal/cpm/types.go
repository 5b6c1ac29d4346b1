package cpm

import "time"

// Task is the scheduling unit supplied by the caller.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Duration int    `json:"duration"` // days; 0 marks a milestone
	// StartDate is the user's advisory start. It anchors the timeline for
	// display only and does not take part in the schedule arithmetic.
	StartDate    time.Time `json:"start_date,omitempty"`
	IsGroup      bool      `json:"is_group,omitempty"`
	Predecessors []string  `json:"predecessors,omitempty"`
}

// Edge is a dependency between two tasks: To cannot start before From
// finishes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ScheduledTask is one task of the input list with its derived CPM fields.
// Group tasks are carried through with Scheduled false and zero fields.
type ScheduledTask struct {
	Task        Task `json:"task"`
	Scheduled   bool `json:"scheduled"`
	EarlyStart  int  `json:"early_start"`
	EarlyFinish int  `json:"early_finish"`
	LateStart   int  `json:"late_start"`
	LateFinish  int  `json:"late_finish"`
	Float       int  `json:"float"`
	IsCritical  bool `json:"critical"`
	Track       int  `json:"track"`
}

// EarlyStartDate returns the calendar date of the early start relative to
// anchor, counting plain calendar days.
func (s ScheduledTask) EarlyStartDate(anchor time.Time) time.Time {
	return anchor.AddDate(0, 0, s.EarlyStart)
}

// LateFinishDate returns the calendar date of the late finish relative to
// anchor, counting plain calendar days.
func (s ScheduledTask) LateFinishDate(anchor time.Time) time.Time {
	return anchor.AddDate(0, 0, s.LateFinish)
}

// Track is an independent group of scheduled tasks: no task in one track
// depends, even transitively, on a task in another.
type Track struct {
	ID       int      `json:"id"`
	TaskIDs  []string `json:"task_ids"`
	Finish   int      `json:"finish"`
	Critical bool     `json:"critical"`
}

// Schedule is the result of RescheduleAll.
type Schedule struct {
	// Tasks holds one entry per input task, in input order.
	Tasks           []ScheduledTask `json:"tasks"`
	ProjectDuration int             `json:"project_duration"`
	// CriticalEdges lists every tight edge between two critical tasks,
	// sorted by From then To.
	CriticalEdges []Edge `json:"critical_edges"`
	// CriticalPath is one chain of critical edges from a start task to a
	// sink whose durations add up to ProjectDuration.
	CriticalPath []string `json:"critical_path"`
	Tracks       []Track  `json:"tracks"`
	// Anchor is the calendar date of day 0: the earliest declared task
	// start, or the zero time if no task declares one.
	Anchor time.Time `json:"anchor,omitempty"`

	index map[string]int
}

// Task returns the scheduled entry for id.
func (s *Schedule) Task(id string) (ScheduledTask, bool) {
	i, ok := s.index[id]
	if !ok {
		return ScheduledTask{}, false
	}
	return s.Tasks[i], true
}

// Critical returns the IDs of all critical tasks in input order.
func (s *Schedule) Critical() []string {
	var ids []string
	for _, st := range s.Tasks {
		if st.IsCritical {
			ids = append(ids, st.Task.ID)
		}
	}
	return ids
}
