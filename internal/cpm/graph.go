package cpm

import (
	"fmt"

	"github.com/papapumpkin/critpath/internal/dag"
)

// taskGraph is the scheduling view of one task list: the dependency graph
// plus an index back into the caller's slice.
type taskGraph struct {
	*dag.Graph
	tasks []Task
	index map[string]int
}

// BuildGraph builds the dependency graph of tasks. Every task, group or
// not, becomes a node. Edges are taken from each task's Predecessors;
// references to unknown IDs, self-references and edges touching a group
// task are dropped. Duplicate predecessor entries collapse to one edge.
// Task IDs must be unique; on duplicates the first occurrence wins.
func BuildGraph(tasks []Task) *dag.Graph {
	return newTaskGraph(tasks).Graph
}

func newTaskGraph(tasks []Task) *taskGraph {
	tg := &taskGraph{
		Graph: dag.New(),
		tasks: tasks,
		index: make(map[string]int, len(tasks)),
	}
	for i, t := range tasks {
		if _, dup := tg.index[t.ID]; dup {
			continue
		}
		tg.index[t.ID] = i
		_ = tg.AddNode(t.ID)
	}
	for id, i := range tg.index {
		t := tasks[i]
		if t.IsGroup {
			continue
		}
		for _, p := range t.Predecessors {
			pi, ok := tg.index[p]
			if !ok || p == id || tasks[pi].IsGroup {
				continue
			}
			_ = tg.Link(p, id)
		}
	}
	return tg
}

// task returns the task stored under id. The caller guarantees id is known.
func (tg *taskGraph) task(id string) Task {
	return tg.tasks[tg.index[id]]
}

// schedulable returns the IDs of non-group tasks, sorted alphabetically.
func (tg *taskGraph) schedulable() []string {
	var ids []string
	for _, id := range tg.Nodes() {
		if !tg.task(id).IsGroup {
			ids = append(ids, id)
		}
	}
	return ids
}

func checkDurations(tasks []Task) error {
	for _, t := range tasks {
		if t.Duration < 0 {
			return fmt.Errorf("%w: task %s has duration %d", ErrInvalidDuration, t.ID, t.Duration)
		}
	}
	return nil
}
