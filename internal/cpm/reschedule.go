package cpm

import (
	"fmt"
	"time"
)

// RescheduleAll runs the full CPM pipeline over tasks: it builds the task
// graph, runs the forward and backward passes, classifies float and
// criticality, and returns one ScheduledTask per input task in input order.
// Dangling and self-referencing predecessor IDs are ignored. Group tasks
// are returned unscheduled.
//
// RescheduleAll is a pure function of its input and holds no state between
// calls. It returns ErrInvalidDuration for negative durations and a
// *StructuralError if the graph is not acyclic; no partial schedule is
// returned in either case.
func RescheduleAll(tasks []Task) (*Schedule, error) {
	if err := checkDurations(tasks); err != nil {
		return nil, err
	}

	tg := newTaskGraph(tasks)
	ids := tg.schedulable()
	tm := make(map[string]*timing, len(ids))
	for _, id := range ids {
		tm[id] = &timing{}
	}

	duration, err := forwardPass(tg, ids, tm)
	if err != nil {
		return nil, err
	}
	if err := backwardPass(tg, ids, tm, duration); err != nil {
		return nil, err
	}
	critical, err := classify(ids, tm)
	if err != nil {
		return nil, err
	}

	edges := criticalEdges(tg, ids, tm, critical)
	sched := &Schedule{
		Tasks:           make([]ScheduledTask, len(tasks)),
		ProjectDuration: duration,
		CriticalEdges:   edges,
		CriticalPath:    criticalPath(tg, ids, edges, critical),
		Anchor:          anchor(tasks),
		index:           make(map[string]int, len(tasks)),
	}

	tracks, err := tg.ComputeTracks(func(id string) bool { return !tg.task(id).IsGroup })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	trackOf := make(map[string]int, len(ids))
	for _, tr := range tracks {
		out := Track{ID: tr.ID, TaskIDs: tr.NodeIDs}
		for _, id := range tr.NodeIDs {
			trackOf[id] = tr.ID
			if tm[id].ef > out.Finish {
				out.Finish = tm[id].ef
			}
			if critical[id] {
				out.Critical = true
			}
		}
		sched.Tracks = append(sched.Tracks, out)
	}

	for i, t := range tasks {
		st := ScheduledTask{Task: t}
		if tg.index[t.ID] == i {
			sched.index[t.ID] = i
		}
		if !t.IsGroup {
			if x, ok := tm[t.ID]; ok {
				st.Scheduled = true
				st.EarlyStart, st.EarlyFinish = x.es, x.ef
				st.LateStart, st.LateFinish = x.ls, x.lf
				st.Float = x.ls - x.es
				st.IsCritical = critical[t.ID]
				st.Track = trackOf[t.ID]
			}
		}
		sched.Tasks[i] = st
	}
	return sched, nil
}

// anchor returns the earliest declared start date among tasks, or the zero
// time if none is set.
func anchor(tasks []Task) time.Time {
	var earliest time.Time
	for _, t := range tasks {
		if t.StartDate.IsZero() {
			continue
		}
		if earliest.IsZero() || t.StartDate.Before(earliest) {
			earliest = t.StartDate
		}
	}
	return earliest
}
