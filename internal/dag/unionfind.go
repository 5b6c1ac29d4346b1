package dag

// UnionFind is a disjoint-set forest over string IDs with path halving and
// union by size. It backs the partition of a project into independent tracks.
type UnionFind struct {
	parent map[string]string
	size   map[string]int
}

// NewUnionFind creates an empty UnionFind.
func NewUnionFind() *UnionFind {
	return &UnionFind{
		parent: make(map[string]string),
		size:   make(map[string]int),
	}
}

// Add inserts x as its own singleton set. Adding a known element is a no-op.
func (uf *UnionFind) Add(x string) {
	if _, ok := uf.parent[x]; ok {
		return
	}
	uf.parent[x] = x
	uf.size[x] = 1
}

// Find returns the representative of the set containing x, adding x as a
// singleton first if it is unknown. The walk is iterative.
func (uf *UnionFind) Find(x string) string {
	uf.Add(x)
	for uf.parent[x] != x {
		grand := uf.parent[uf.parent[x]]
		uf.parent[x] = grand
		x = grand
	}
	return x
}

// Union merges the sets containing x and y, hanging the smaller tree under
// the larger one.
func (uf *UnionFind) Union(x, y string) {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return
	}
	if uf.size[rx] < uf.size[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
}

// Connected reports whether x and y belong to the same set.
func (uf *UnionFind) Connected(x, y string) bool {
	return uf.Find(x) == uf.Find(y)
}

// Components returns the disjoint sets keyed by representative. Member
// lists are in no guaranteed order.
func (uf *UnionFind) Components() map[string][]string {
	groups := make(map[string][]string)
	for x := range uf.parent {
		root := uf.Find(x)
		groups[root] = append(groups[root], x)
	}
	return groups
}
