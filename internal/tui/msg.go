package tui

import (
	"time"

	"github.com/papapumpkin/critpath/internal/cpm"
)

// MsgSchedule carries a freshly computed schedule.
type MsgSchedule struct {
	Schedule *cpm.Schedule
	At       time.Time
}

// MsgError reports a failure to load or schedule the project. The view
// keeps showing the last good schedule, marked stale.
type MsgError struct {
	Err error
	At  time.Time
}

// MsgFileRemoved is sent when the watched project file disappears.
type MsgFileRemoved struct {
	File string
}
