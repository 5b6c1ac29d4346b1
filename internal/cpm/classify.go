package cpm

// classify derives float and criticality from the two passes. A negative
// float can only come from inconsistent passes and is returned as a
// structural error rather than clamped.
func classify(ids []string, tm map[string]*timing) (map[string]bool, error) {
	critical := make(map[string]bool, len(ids))
	var negative []string
	for _, id := range ids {
		t := tm[id]
		float := t.ls - t.es
		if float < 0 {
			negative = append(negative, id)
			continue
		}
		critical[id] = float == 0
	}
	if len(negative) > 0 {
		return nil, &StructuralError{Kind: KindNegativeFloat, TaskIDs: negative}
	}
	return critical, nil
}

// criticalEdges returns every edge whose endpoints are both critical and
// whose predecessor finishes exactly when the successor starts. An edge
// between two critical tasks that is not binding is left out. ids must be
// sorted; the result is ordered by From then To.
func criticalEdges(tg *taskGraph, ids []string, tm map[string]*timing, critical map[string]bool) []Edge {
	var edges []Edge
	for _, from := range ids {
		if !critical[from] {
			continue
		}
		for _, to := range tg.Successors(from) {
			if critical[to] && tm[from].ef == tm[to].es {
				edges = append(edges, Edge{From: from, To: to})
			}
		}
	}
	return edges
}

// criticalPath walks one chain of critical edges from the first critical
// start task to a sink. Every critical non-sink task has at least one
// critical successor joined by a tight edge, so the walk cannot dead-end
// on a consistent schedule.
func criticalPath(tg *taskGraph, ids []string, edges []Edge, critical map[string]bool) []string {
	next := make(map[string]string, len(edges))
	for _, e := range edges {
		if _, ok := next[e.From]; !ok {
			next[e.From] = e.To
		}
	}

	var start string
	for _, id := range ids {
		if critical[id] && tg.InDegree(id) == 0 {
			start = id
			break
		}
	}
	if start == "" {
		return nil
	}

	path := []string{start}
	for cur := start; ; {
		n, ok := next[cur]
		if !ok {
			break
		}
		path = append(path, n)
		cur = n
	}
	return path
}
