package dag

import (
	"fmt"
	"strings"
	"testing"
)

func TestUnionFind(t *testing.T) {
	t.Parallel()

	uf := NewUnionFind()
	for _, x := range []string{"a", "b", "c", "d", "e"} {
		uf.Add(x)
	}
	if uf.Connected("a", "b") {
		t.Error("fresh singletons should not be connected")
	}

	uf.Union("a", "b")
	uf.Union("c", "d")
	uf.Union("b", "d")
	uf.Union("a", "d") // already joined

	if !uf.Connected("a", "c") {
		t.Error("a and c should be connected through b-d")
	}
	if uf.Connected("a", "e") {
		t.Error("e should stay a singleton")
	}
	if got := len(uf.Components()); got != 2 {
		t.Errorf("Components() = %d sets, want 2", got)
	}
}

func TestUnionFind_AutoAdd(t *testing.T) {
	t.Parallel()
	uf := NewUnionFind()
	if root := uf.Find("x"); root != "x" {
		t.Errorf("Find(x) = %s, want x", root)
	}
	uf.Union("y", "z")
	if !uf.Connected("y", "z") {
		t.Error("Union should auto-add both elements")
	}
}

func TestUnionFind_LongChain(t *testing.T) {
	t.Parallel()
	uf := NewUnionFind()
	prev := "n0"
	for i := 1; i < 5000; i++ {
		cur := fmt.Sprintf("n%d", i)
		uf.Union(prev, cur)
		prev = cur
	}
	if len(uf.Components()) != 1 {
		t.Errorf("chain should collapse into one component, got %d", len(uf.Components()))
	}
}

func TestComputeTracks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []string
		edges []edgeSpec
		want  []string // each entry is a comma-joined track in order
	}{
		{name: "empty", want: nil},
		{name: "single node", nodes: []string{"a"}, want: []string{"a"}},
		{
			name:  "single chain",
			nodes: []string{"c", "b", "a"},
			edges: []edgeSpec{{"a", "b"}, {"b", "c"}},
			want:  []string{"a,b,c"},
		},
		{
			name:  "two chains, larger first",
			nodes: []string{"a", "b", "x", "y", "z"},
			edges: []edgeSpec{{"a", "b"}, {"x", "y"}, {"y", "z"}},
			want:  []string{"x,y,z", "a,b"},
		},
		{
			name:  "isolated nodes break ties by id",
			nodes: []string{"q", "p", "r"},
			want:  []string{"p", "q", "r"},
		},
		{
			name:  "fan-in joins everything",
			nodes: []string{"a", "b", "c", "d"},
			edges: []edgeSpec{{"a", "d"}, {"b", "d"}, {"c", "d"}},
			want:  []string{"a,b,c,d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := buildGraph(t, tt.nodes, tt.edges)
			tracks, err := g.ComputeTracks(nil)
			if err != nil {
				t.Fatalf("ComputeTracks: %v", err)
			}
			if len(tracks) != len(tt.want) {
				t.Fatalf("got %d tracks, want %d: %+v", len(tracks), len(tt.want), tracks)
			}
			for i, tr := range tracks {
				if tr.ID != i {
					t.Errorf("track %d has ID %d", i, tr.ID)
				}
				if got := strings.Join(tr.NodeIDs, ","); got != tt.want[i] {
					t.Errorf("track %d = %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestComputeTracks_Filter(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, []string{"a", "b", "group"}, []edgeSpec{{"a", "b"}})
	tracks, err := g.ComputeTracks(func(id string) bool { return id != "group" })
	if err != nil {
		t.Fatalf("ComputeTracks: %v", err)
	}
	if len(tracks) != 1 || strings.Join(tracks[0].NodeIDs, ",") != "a,b" {
		t.Errorf("tracks = %+v, want single track a,b", tracks)
	}
}
