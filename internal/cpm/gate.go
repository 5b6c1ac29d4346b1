package cpm

import (
	"fmt"
	"slices"
)

// Outcome is the non-error result of a dependency proposal.
type Outcome int

// Proposal outcomes.
const (
	// Accepted means the edge was new and has been added.
	Accepted Outcome = iota + 1
	// DuplicateEdge means the target already listed the source. Nothing
	// changed; callers may skip the persistence write.
	DuplicateEdge
)

// String returns a lower-case name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case DuplicateEdge:
		return "duplicate"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Gate is the single entry point through which new dependency edges reach
// a task list. The zero value is ready to use.
//
// Gate does no locking. Callers must serialize mutations per project and
// run the proposal against the list as it stands after acquiring that
// serialization, otherwise two individually valid proposals can jointly
// form a cycle.
type Gate struct {
	// OnAccepted, if set, is called after an edge has been added. Callers
	// use it to mark any schedule derived from the list as stale.
	OnAccepted func(Edge)
}

// ProposeDependency asks the gate to record that target depends on source.
// On acceptance source is appended to the target's Predecessors in place.
//
// It returns a *CycleError if source == target or if target already
// reaches source through existing edges; ErrTaskNotFound if either task is
// missing from tasks; ErrGroupTask if either is a group task. A
// DuplicateEdge outcome is a successful no-op.
func (g Gate) ProposeDependency(tasks []Task, source, target string) (Outcome, error) {
	outcome, ti, err := checkDependency(tasks, source, target)
	if err != nil || outcome == DuplicateEdge {
		return outcome, err
	}
	tasks[ti].Predecessors = append(tasks[ti].Predecessors, source)
	if g.OnAccepted != nil {
		g.OnAccepted(Edge{From: source, To: target})
	}
	return Accepted, nil
}

// ProposeDependency runs a zero-value Gate.
func ProposeDependency(tasks []Task, source, target string) (Outcome, error) {
	return Gate{}.ProposeDependency(tasks, source, target)
}

// CheckDependency reports what ProposeDependency would return without
// modifying tasks.
func CheckDependency(tasks []Task, source, target string) (Outcome, error) {
	outcome, _, err := checkDependency(tasks, source, target)
	return outcome, err
}

// checkDependency validates source → target and returns the index of the
// target task on success.
func checkDependency(tasks []Task, source, target string) (Outcome, int, error) {
	if source == target {
		return 0, -1, &CycleError{Source: source, Target: target, Path: []string{source}}
	}

	tg := newTaskGraph(tasks)
	si, ok := tg.index[source]
	if !ok {
		return 0, -1, fmt.Errorf("%w: %s", ErrTaskNotFound, source)
	}
	ti, ok := tg.index[target]
	if !ok {
		return 0, -1, fmt.Errorf("%w: %s", ErrTaskNotFound, target)
	}
	if tasks[si].IsGroup {
		return 0, -1, fmt.Errorf("%w: %s", ErrGroupTask, source)
	}
	if tasks[ti].IsGroup {
		return 0, -1, fmt.Errorf("%w: %s", ErrGroupTask, target)
	}

	if tg.WouldCycle(source, target) {
		return 0, -1, &CycleError{Source: source, Target: target, Path: tg.PathBetween(target, source)}
	}
	if slices.Contains(tasks[ti].Predecessors, source) {
		return DuplicateEdge, ti, nil
	}
	return Accepted, ti, nil
}

// Validate checks an externally supplied task list for the problems the
// gate exists to prevent: negative durations and dependency cycles. It
// returns a *CycleError describing the first loop found, with Source → Target
// being the edge that closes it.
func Validate(tasks []Task) error {
	if err := checkDurations(tasks); err != nil {
		return err
	}
	loop := BuildGraph(tasks).FindCycle()
	if loop == nil {
		return nil
	}
	// loop is n0 → n1 → … → nk → n0; report nk → n0 as the closing edge.
	n := len(loop)
	return &CycleError{Source: loop[n-2], Target: loop[n-1], Path: loop[:n-1]}
}
