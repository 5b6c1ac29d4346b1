package cpm

import "sort"

// timing holds the derived day offsets of one task.
type timing struct {
	es, ef int
	ls, lf int
}

// forwardPass fills es/ef for every schedulable task and returns the project
// duration. It is a worklist over the graph: a task enters the queue only
// once all of its predecessors are finalized, so each task is finalized at
// most once and total work is bounded by the number of edges. A task that
// never becomes ready means the graph holds a cycle, reported as a
// forward-stall.
func forwardPass(tg *taskGraph, ids []string, tm map[string]*timing) (int, error) {
	pending := make(map[string]int, len(ids))
	var queue []string
	for _, id := range ids {
		pending[id] = tg.InDegree(id)
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}

	finalized := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		es := 0
		for _, p := range tg.Predecessors(id) {
			if ef := tm[p].ef; ef > es {
				es = ef
			}
		}
		tm[id].es = es
		tm[id].ef = es + tg.task(id).Duration
		finalized++

		for _, s := range tg.Successors(id) {
			pending[s]--
			if pending[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if finalized != len(ids) {
		return 0, &StructuralError{Kind: KindForwardStall, TaskIDs: stalled(pending)}
	}

	duration := 0
	for _, id := range ids {
		if tg.OutDegree(id) == 0 && tm[id].ef > duration {
			duration = tm[id].ef
		}
	}
	return duration, nil
}

// backwardPass fills ls/lf for every schedulable task. It mirrors
// forwardPass, seeded from the sinks with lf = duration and propagating
// along predecessor edges once every successor is finalized.
func backwardPass(tg *taskGraph, ids []string, tm map[string]*timing, duration int) error {
	pending := make(map[string]int, len(ids))
	var queue []string
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		pending[id] = tg.OutDegree(id)
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}

	finalized := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		lf := duration
		for _, s := range tg.Successors(id) {
			if ls := tm[s].ls; ls < lf {
				lf = ls
			}
		}
		tm[id].lf = lf
		tm[id].ls = lf - tg.task(id).Duration
		finalized++

		for _, p := range tg.Predecessors(id) {
			pending[p]--
			if pending[p] == 0 {
				queue = append(queue, p)
			}
		}
	}

	if finalized != len(ids) {
		return &StructuralError{Kind: KindBackwardStall, TaskIDs: stalled(pending)}
	}
	return nil
}

// stalled lists the tasks still waiting on unfinalized neighbours.
func stalled(pending map[string]int) []string {
	var ids []string
	for id, n := range pending {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
