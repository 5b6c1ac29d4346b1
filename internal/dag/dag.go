// Package dag provides the directed graph underneath the scheduler. Nodes are
// opaque string IDs; an edge runs from a predecessor to its successor, so if B
// depends on A there is an edge A → B. The graph supports O(1) predecessor and
// successor lookup, reachability queries, cycle search and topological
// ordering. All traversals are iterative and carry one shared
// visited set, so stack usage is bounded regardless of chain depth.
package dag

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when an edge would close a cycle or the graph
// already contains one.
var ErrCycle = errors.New("cycle detected")

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrSelfEdge is returned when an edge would create a self-loop.
var ErrSelfEdge = errors.New("self-referencing edge")

// Graph is a directed graph of task IDs. It does not enforce acyclicity:
// Link inserts unconditionally so that damaged input can still be
// represented and diagnosed. Callers ask WouldCycle before linking.
type Graph struct {
	nodes map[string]struct{}
	// preds maps nodeID → set of predecessor IDs (backward edges).
	preds map[string]map[string]bool
	// succs maps nodeID → set of successor IDs (forward edges).
	succs map[string]map[string]bool
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		preds: make(map[string]map[string]bool),
		succs: make(map[string]map[string]bool),
	}
}

// AddNode adds a node with the given ID. Returns ErrDuplicateNode if a node
// with that ID already exists.
func (g *Graph) AddNode(id string) error {
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.nodes[id] = struct{}{}
	g.preds[id] = make(map[string]bool)
	g.succs[id] = make(map[string]bool)
	return nil
}

// Has reports whether the graph contains a node with the given ID.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Link records that succ depends on pred without checking for cycles.
// Both nodes must exist and must differ. Linking an existing edge is a no-op.
func (g *Graph) Link(pred, succ string) error {
	if pred == succ {
		return fmt.Errorf("%w: %s", ErrSelfEdge, pred)
	}
	if !g.Has(pred) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, pred)
	}
	if !g.Has(succ) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, succ)
	}
	if g.succs[pred][succ] {
		return nil
	}
	g.succs[pred][succ] = true
	g.preds[succ][pred] = true
	return nil
}

// Nodes returns all node IDs in the graph, sorted alphabetically.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Predecessors returns the direct predecessors of id, sorted alphabetically.
func (g *Graph) Predecessors(id string) []string {
	return sortedKeys(g.preds[id])
}

// Successors returns the direct successors of id, sorted alphabetically.
func (g *Graph) Successors(id string) []string {
	return sortedKeys(g.succs[id])
}

// InDegree returns the number of direct predecessors of id.
func (g *Graph) InDegree(id string) int {
	return len(g.preds[id])
}

// OutDegree returns the number of direct successors of id.
func (g *Graph) OutDegree(id string) int {
	return len(g.succs[id])
}

// Sources returns the nodes with no predecessors, sorted alphabetically.
func (g *Graph) Sources() []string {
	var ids []string
	for id := range g.nodes {
		if len(g.preds[id]) == 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// TopologicalSort returns node IDs in a valid topological order
// (predecessors before successors). Ties are broken alphabetically.
// Returns ErrCycle if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.preds[id])
	}

	queue := g.Sources()
	sorted := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		var freed []string
		for s := range g.succs[id] {
			inDegree[s]--
			if inDegree[s] == 0 {
				freed = append(freed, s)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}

	if len(sorted) != len(g.nodes) {
		return nil, fmt.Errorf("%w: not all nodes could be ordered (%d of %d)",
			ErrCycle, len(sorted), len(g.nodes))
	}
	return sorted, nil
}

// Ancestors returns everything id transitively depends on, sorted
// alphabetically. Returns nil if the node does not exist.
func (g *Graph) Ancestors(id string) []string {
	if !g.Has(id) {
		return nil
	}
	return sortedKeys(g.reach(id, g.preds))
}

// Descendants returns everything that transitively depends on id, sorted
// alphabetically. Returns nil if the node does not exist.
func (g *Graph) Descendants(id string) []string {
	if !g.Has(id) {
		return nil
	}
	return sortedKeys(g.reach(id, g.succs))
}

// reach collects every node reachable from start along adj, excluding start
// unless a cycle leads back to it.
func (g *Graph) reach(start string, adj map[string]map[string]bool) map[string]bool {
	visited := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return visited
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
