package dag

// WouldCycle reports whether adding the edge pred → succ would close a
// cycle. A self-edge is always a cycle. Otherwise the edge closes a loop
// exactly when pred is already reachable from succ along successor edges.
// The graph is not modified.
func (g *Graph) WouldCycle(pred, succ string) bool {
	if pred == succ {
		return true
	}
	return g.Reachable(succ, pred)
}

// Reachable reports whether there is a directed path from src to dst
// following successor edges. A node does not reach itself unless it lies
// on a cycle.
func (g *Graph) Reachable(src, dst string) bool {
	return g.PathBetween(src, dst) != nil
}

// PathBetween returns the shortest directed path from src to dst following
// successor edges, including both endpoints, or nil if dst is unreachable.
// The search is a breadth-first traversal with a single visited set, so it
// runs in O(V + E). Successors are explored in alphabetical order, which
// makes the returned path deterministic.
func (g *Graph) PathBetween(src, dst string) []string {
	if !g.Has(src) || !g.Has(dst) {
		return nil
	}
	parent := make(map[string]string)
	visited := map[string]bool{src: true}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(cur) {
			if next == dst {
				return tracePath(parent, src, cur, dst)
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	return nil
}

// tracePath rebuilds src → … → last → dst from the BFS parent links.
func tracePath(parent map[string]string, src, last, dst string) []string {
	path := []string{dst, last}
	for cur := last; cur != src; {
		cur = parent[cur]
		path = append(path, cur)
	}
	reverse(path)
	return path
}

// FindCycle returns one directed cycle in the graph as a path whose first
// and last elements are the same node, or nil if the graph is acyclic.
// Roots are tried in alphabetical order so the result is stable.
func (g *Graph) FindCycle() []string {
	const (
		white = iota
		gray
		black
	)
	type frame struct {
		id   string
		next []string
		i    int
	}

	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string)

	for _, root := range g.Nodes() {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{id: root, next: g.Successors(root)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.i == len(top.next) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			n := top.next[top.i]
			top.i++

			switch color[n] {
			case white:
				color[n] = gray
				parent[n] = top.id
				stack = append(stack, frame{id: n, next: g.Successors(n)})
			case gray:
				// Back edge top.id → n: n is on the stack.
				path := []string{top.id}
				for cur := top.id; cur != n; {
					cur = parent[cur]
					path = append(path, cur)
				}
				reverse(path)
				return append(path, n)
			}
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
