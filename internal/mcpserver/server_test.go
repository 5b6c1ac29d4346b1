package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/store"
	"github.com/papapumpkin/critpath/internal/telemetry"
)

// testStore opens a temporary database seeded with project "launch":
// A(3) → C(5), B(2).
func testStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "critpath.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	p, err := st.CreateProject(ctx, "launch", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	for _, task := range []cpm.Task{
		{ID: "A", Name: "Design", Duration: 3},
		{ID: "B", Name: "Docs", Duration: 2},
		{ID: "C", Name: "Build", Duration: 5, Predecessors: []string{"A"}},
	} {
		if err := st.PutTask(ctx, p.ID, task); err != nil {
			t.Fatalf("PutTask(%s): %v", task.ID, err)
		}
	}
	return st
}

// mcpClientSession connects an in-memory client to srv.
func mcpClientSession(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()

	ss, err := srv.mcp.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })

	return cs
}

// callTool calls a tool and returns the result.
func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	return result
}

// decode unmarshals a tool's structured output into out.
func decode(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %v", resultText(result))
	}
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal StructuredContent: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal %T: %v", out, err)
	}
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestListProjectsAndSchedule(t *testing.T) {
	t.Parallel()
	cs := mcpClientSession(t, NewServer(testStore(t), nil))

	var projects listProjectsOutput
	decode(t, callTool(t, cs, "list_projects", map[string]any{}), &projects)
	if len(projects.Projects) != 1 || projects.Projects[0].Name != "launch" {
		t.Fatalf("projects = %+v, want one project named launch", projects.Projects)
	}
	if projects.Projects[0].Start != "2026-03-02" {
		t.Errorf("start = %q, want 2026-03-02", projects.Projects[0].Start)
	}

	var sched getScheduleOutput
	decode(t, callTool(t, cs, "get_schedule", map[string]any{"project": "launch"}), &sched)
	if sched.ProjectDuration != 8 {
		t.Errorf("project_duration = %d, want 8", sched.ProjectDuration)
	}
	if diff := cmp.Diff([]string{"A", "C"}, sched.CriticalPath); diff != "" {
		t.Errorf("critical_path mismatch (-want +got):\n%s", diff)
	}
	if sched.Start != "2026-03-02" {
		t.Errorf("start = %q, want 2026-03-02", sched.Start)
	}
	floats := make(map[string]int, len(sched.Tasks))
	for _, task := range sched.Tasks {
		floats[task.ID] = task.Float
	}
	if diff := cmp.Diff(map[string]int{"A": 0, "B": 6, "C": 0}, floats); diff != "" {
		t.Errorf("float mismatch (-want +got):\n%s", diff)
	}

	byID := make(map[string]scheduleEntry, len(sched.Tasks))
	for _, task := range sched.Tasks {
		byID[task.ID] = task
	}
	if diff := cmp.Diff([]string{"A"}, byID["C"].BlockedBy); diff != "" {
		t.Errorf("C blocked_by mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C"}, byID["A"].Blocks); diff != "" {
		t.Errorf("A blocks mismatch (-want +got):\n%s", diff)
	}
	if b := byID["B"]; len(b.BlockedBy) != 0 || len(b.Blocks) != 0 {
		t.Errorf("B is independent, got blocked_by=%v blocks=%v", b.BlockedBy, b.Blocks)
	}

	if res := callTool(t, cs, "get_schedule", map[string]any{"project": "missing"}); !res.IsError {
		t.Error("get_schedule on an unknown project should be a tool error")
	}
}

func TestProposeDependency(t *testing.T) {
	t.Parallel()
	events := filepath.Join(t.TempDir(), "events.jsonl")
	em, err := telemetry.NewEmitter(events)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	t.Cleanup(func() { em.Close() })
	cs := mcpClientSession(t, NewServer(testStore(t), em))

	propose := func(source, target string, dryRun bool) proposeDependencyOutput {
		t.Helper()
		var out proposeDependencyOutput
		decode(t, callTool(t, cs, "propose_dependency", map[string]any{
			"project": "launch", "source": source, "target": target, "dry_run": dryRun,
		}), &out)
		return out
	}

	if got := propose("C", "B", true); got.Outcome != outcomeAccepted {
		t.Errorf("dry run C → B = %+v, want accepted", got)
	}
	if got := propose("C", "B", true); got.Outcome != outcomeAccepted {
		t.Errorf("dry run must not write; second dry run = %+v", got)
	}
	if got := propose("C", "B", false); got.Outcome != outcomeAccepted {
		t.Errorf("C → B = %+v, want accepted", got)
	}
	if got := propose("C", "B", false); got.Outcome != outcomeDuplicate {
		t.Errorf("C → B again = %+v, want duplicate", got)
	}

	got := propose("B", "A", false)
	if got.Outcome != outcomeRejected {
		t.Fatalf("B → A = %+v, want rejected", got)
	}
	if diff := cmp.Diff([]string{"A", "C", "B"}, got.Cycle); diff != "" {
		t.Errorf("cycle mismatch (-want +got):\n%s", diff)
	}

	if got := propose("A", "nope", false); got.Outcome != outcomeRejected {
		t.Errorf("unknown target = %+v, want rejected", got)
	}

	var sched getScheduleOutput
	decode(t, callTool(t, cs, "get_schedule", map[string]any{"project": "launch"}), &sched)
	if sched.ProjectDuration != 10 {
		t.Errorf("project_duration after C → B = %d, want 10", sched.ProjectDuration)
	}
	for _, task := range sched.Tasks {
		if task.ID == "B" {
			if diff := cmp.Diff([]string{"A", "C"}, task.BlockedBy); diff != "" {
				t.Errorf("B blocked_by after C → B (-want +got):\n%s", diff)
			}
		}
	}
}

func TestPutTaskAndRemoveDependency(t *testing.T) {
	t.Parallel()
	cs := mcpClientSession(t, NewServer(testStore(t), nil))

	var put putTaskOutput
	decode(t, callTool(t, cs, "put_task", map[string]any{
		"project": "launch", "id": "D", "duration": 1, "after": []string{"C", "B"},
	}), &put)
	if put.ID != "D" {
		t.Errorf("id = %q, want D", put.ID)
	}

	res := callTool(t, cs, "put_task", map[string]any{
		"project": "launch", "id": "A", "duration": 3, "after": []string{"D"},
	})
	if !res.IsError {
		t.Fatal("put_task closing a cycle should be a tool error")
	}
	if !strings.Contains(resultText(res), "cycle") {
		t.Errorf("error text = %q, want it to mention the cycle", resultText(res))
	}

	var rm removeDependencyOutput
	decode(t, callTool(t, cs, "remove_dependency", map[string]any{
		"project": "launch", "source": "C", "target": "D",
	}), &rm)
	if !rm.Removed {
		t.Error("remove_dependency C → D: removed = false")
	}
	decode(t, callTool(t, cs, "remove_dependency", map[string]any{
		"project": "launch", "source": "C", "target": "D",
	}), &rm)
	if rm.Removed {
		t.Error("second remove_dependency C → D: removed = true")
	}
}

func TestProposeDependency_ConcurrentAgentsNeverCycle(t *testing.T) {
	t.Parallel()
	st := testStore(t)
	srv := NewServer(st, nil)

	const agents = 4
	sessions := make([]*mcp.ClientSession, agents)
	for i := range sessions {
		sessions[i] = mcpClientSession(t, srv)
	}

	ids := []string{"A", "B", "C"}
	var wg sync.WaitGroup
	for i, cs := range sessions {
		for _, src := range ids {
			for _, dst := range ids {
				if src == dst {
					continue
				}
				wg.Add(1)
				go func(cs *mcp.ClientSession, src, dst string) {
					defer wg.Done()
					res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
						Name:      "propose_dependency",
						Arguments: map[string]any{"project": "launch", "source": src, "target": dst},
					})
					if err != nil {
						t.Errorf("agent %d CallTool: %v", i, err)
						return
					}
					if res.IsError {
						t.Errorf("agent %d %s → %s: %s", i, src, dst, resultText(res))
					}
				}(cs, src, dst)
			}
		}
	}
	wg.Wait()

	p, err := st.FindProject(context.Background(), "launch")
	if err != nil {
		t.Fatalf("FindProject: %v", err)
	}
	tasks, err := st.Tasks(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if err := cpm.Validate(tasks); err != nil {
		t.Fatalf("concurrent proposals produced a cycle: %v", err)
	}
	edges := 0
	for _, task := range tasks {
		edges += len(task.Predecessors)
	}
	// Three tasks admit at most three acyclic edges; all of them got in
	// because every pair was proposed in both directions.
	if edges != 3 {
		t.Errorf("edges = %d, want 3 (%s)", edges, fmt.Sprint(tasks))
	}
}
