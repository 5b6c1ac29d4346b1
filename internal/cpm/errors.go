package cpm

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for dependency validation and scheduling.
var (
	// ErrCycle indicates a dependency would close, or already forms, a loop.
	ErrCycle = errors.New("dependency cycle")
	// ErrStructural indicates the task graph violated an invariant the gate
	// is supposed to guarantee. It is never a user error.
	ErrStructural = errors.New("structural invariant violation")
	// ErrTaskNotFound indicates a dependency names a task absent from the list.
	ErrTaskNotFound = errors.New("task not found")
	// ErrGroupTask indicates a dependency touches a group task.
	ErrGroupTask = errors.New("group tasks cannot take part in dependencies")
	// ErrInvalidDuration indicates a task with a negative duration.
	ErrInvalidDuration = errors.New("invalid duration")
)

// IsRejection reports whether err is the gate refusing an edge (a cycle,
// an unknown task or a group task) rather than a storage or I/O fault.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCycle) || errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrGroupTask)
}

// CycleError reports a dependency that would close a loop. Path is the
// existing chain from Target back to Source that the new edge would
// complete; for a self-dependency it is just the task itself.
type CycleError struct {
	Source string
	Target string
	Path   []string
}

// Error describes the loop the rejected edge would close.
func (e *CycleError) Error() string {
	if e.Source == e.Target {
		return fmt.Sprintf("dependency cycle: %s cannot depend on itself", e.Source)
	}
	return fmt.Sprintf("dependency cycle: %s → %s would close %s",
		e.Source, e.Target, strings.Join(append(append([]string(nil), e.Path...), e.Target), " → "))
}

// Unwrap lets errors.Is match ErrCycle.
func (e *CycleError) Unwrap() error { return ErrCycle }

// StructuralKind names the invariant a StructuralError reports.
type StructuralKind string

// Kinds of structural violation.
const (
	KindForwardStall  StructuralKind = "forward-stall"  // forward pass could not finalize every task
	KindBackwardStall StructuralKind = "backward-stall" // backward pass could not finalize every task
	KindNegativeFloat StructuralKind = "negative-float" // late start before early start
)

// StructuralError is returned when scheduling finds the graph in a state
// the gate should have made impossible, such as a cycle persisted by a path
// that bypassed it. No schedule is produced alongside it.
type StructuralError struct {
	Kind    StructuralKind
	TaskIDs []string
}

// Error names the violated invariant and the tasks involved.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s on %d task(s): %s",
		ErrStructural, e.Kind, len(e.TaskIDs), strings.Join(e.TaskIDs, ", "))
}

// Unwrap lets errors.Is match ErrStructural.
func (e *StructuralError) Unwrap() error { return ErrStructural }
