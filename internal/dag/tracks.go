package dag

import "sort"

// Track is a weakly connected component of the graph: a set of nodes that
// share no dependency, direct or transitive, with nodes of any other track.
// Tracks can slip independently of one another.
type Track struct {
	// ID is the position of the track after sorting, starting at 0.
	ID int

	// NodeIDs lists the track's nodes in topological order.
	NodeIDs []string
}

// ComputeTracks partitions the nodes accepted by include into independent
// tracks using Union-Find. A nil include accepts every node. Tracks are
// ordered largest first, with the first node ID breaking ties. Returns
// ErrCycle if the graph is cyclic.
func (g *Graph) ComputeTracks(include func(id string) bool) ([]Track, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	accept := func(id string) bool { return include == nil || include(id) }

	uf := NewUnionFind()
	for id := range g.nodes {
		if accept(id) {
			uf.Add(id)
		}
	}
	for pred, succs := range g.succs {
		if !accept(pred) {
			continue
		}
		for succ := range succs {
			if accept(succ) {
				uf.Union(pred, succ)
			}
		}
	}

	components := uf.Components()
	tracks := make([]Track, 0, len(components))
	for _, members := range components {
		sort.Slice(members, func(i, j int) bool {
			return pos[members[i]] < pos[members[j]]
		})
		tracks = append(tracks, Track{NodeIDs: members})
	}

	sort.Slice(tracks, func(i, j int) bool {
		if len(tracks[i].NodeIDs) != len(tracks[j].NodeIDs) {
			return len(tracks[i].NodeIDs) > len(tracks[j].NodeIDs)
		}
		return tracks[i].NodeIDs[0] < tracks[j].NodeIDs[0]
	})
	for i := range tracks {
		tracks[i].ID = i
	}
	return tracks, nil
}
