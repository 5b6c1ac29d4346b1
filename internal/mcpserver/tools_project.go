package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/telemetry"
)

// listProjectsInput is the input schema for the list_projects tool.
type listProjectsInput struct{}

// projectEntry is a single project in the list_projects response.
type projectEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Start string `json:"start,omitempty"`
}

// listProjectsOutput is the output schema for the list_projects tool.
type listProjectsOutput struct {
	Projects []projectEntry `json:"projects"`
}

// getScheduleInput is the input schema for the get_schedule tool.
type getScheduleInput struct {
	Project string `json:"project" jsonschema:"Project name or ID"`
}

// scheduleEntry is one task row of the get_schedule response.
type scheduleEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Duration    int      `json:"duration"`
	Group       bool     `json:"group,omitempty"`
	After       []string `json:"after,omitempty"`
	EarlyStart  int      `json:"early_start"`
	EarlyFinish int      `json:"early_finish"`
	LateStart   int      `json:"late_start"`
	LateFinish  int      `json:"late_finish"`
	Float       int      `json:"float"`
	Critical    bool     `json:"critical"`
	// BlockedBy lists every task this one transitively waits on.
	BlockedBy []string `json:"blocked_by,omitempty"`
	// Blocks lists every task that transitively waits on this one.
	Blocks []string `json:"blocks,omitempty"`
}

// getScheduleOutput is the output schema for the get_schedule tool.
type getScheduleOutput struct {
	ProjectDuration int             `json:"project_duration"`
	CriticalPath    []string        `json:"critical_path"`
	Start           string          `json:"start,omitempty"`
	Tasks           []scheduleEntry `json:"tasks"`
}

// putTaskInput is the input schema for the put_task tool.
type putTaskInput struct {
	Project  string   `json:"project" jsonschema:"Project name or ID"`
	ID       string   `json:"id" jsonschema:"Task ID, unique within the project"`
	Name     string   `json:"name,omitempty" jsonschema:"Human-readable task name"`
	Duration int      `json:"duration" jsonschema:"Duration in days; 0 marks a milestone"`
	Group    bool     `json:"group,omitempty" jsonschema:"Summary task that takes no part in scheduling"`
	After    []string `json:"after,omitempty" jsonschema:"IDs of tasks that must finish first"`
}

// putTaskOutput is the output schema for the put_task tool.
type putTaskOutput struct {
	ID string `json:"id"`
}

// registerProjectTools registers list_projects, get_schedule and put_task.
func (s *Server) registerProjectTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_projects",
		Description: "List the projects in the critpath database",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listProjectsInput) (*mcp.CallToolResult, listProjectsOutput, error) {
		projects, err := s.store.Projects(ctx)
		if err != nil {
			return nil, listProjectsOutput{}, fmt.Errorf("listing projects: %w", err)
		}
		out := listProjectsOutput{Projects: make([]projectEntry, len(projects))}
		for i, p := range projects {
			out.Projects[i] = projectEntry{ID: p.ID, Name: p.Name, Start: formatDay(p.Start)}
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_schedule",
		Description: "Compute early/late dates, float and the critical path of a project, with what each task is blocked by and blocks",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input getScheduleInput) (*mcp.CallToolResult, getScheduleOutput, error) {
		if input.Project == "" {
			return nil, getScheduleOutput{}, fmt.Errorf("project is required")
		}
		sched, err := s.store.Schedule(ctx, input.Project)
		if err != nil {
			return nil, getScheduleOutput{}, fmt.Errorf("scheduling %s: %w", input.Project, err)
		}
		s.emit(telemetry.Event{
			Kind:    telemetry.KindScheduleComputed,
			Project: input.Project,
			Data:    map[string]any{"duration": sched.ProjectDuration, "critical_path": sched.CriticalPath, "source": "mcp"},
		})
		return nil, scheduleOutput(sched), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "put_task",
		Description: "Create or update a task; each predecessor is checked for cycles before anything is written",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input putTaskInput) (*mcp.CallToolResult, putTaskOutput, error) {
		if input.Project == "" {
			return nil, putTaskOutput{}, fmt.Errorf("project is required")
		}
		if input.ID == "" {
			return nil, putTaskOutput{}, fmt.Errorf("id is required")
		}
		p, err := s.store.FindProject(ctx, input.Project)
		if err != nil {
			return nil, putTaskOutput{}, err
		}
		task := cpm.Task{
			ID:           input.ID,
			Name:         input.Name,
			Duration:     input.Duration,
			IsGroup:      input.Group,
			Predecessors: input.After,
		}
		if err := s.store.PutTask(ctx, p.ID, task); err != nil {
			return nil, putTaskOutput{}, fmt.Errorf("putting task %s: %w", input.ID, err)
		}
		return nil, putTaskOutput{ID: input.ID}, nil
	})
}

// scheduleOutput flattens a schedule into the tool's response rows.
func scheduleOutput(sched *cpm.Schedule) getScheduleOutput {
	out := getScheduleOutput{
		ProjectDuration: sched.ProjectDuration,
		CriticalPath:    append([]string{}, sched.CriticalPath...),
		Start:           formatDay(sched.Anchor),
		Tasks:           make([]scheduleEntry, len(sched.Tasks)),
	}
	tasks := make([]cpm.Task, len(sched.Tasks))
	for i, st := range sched.Tasks {
		tasks[i] = st.Task
	}
	g := cpm.BuildGraph(tasks)
	for i, st := range sched.Tasks {
		out.Tasks[i] = scheduleEntry{
			ID:          st.Task.ID,
			Name:        st.Task.Name,
			Duration:    st.Task.Duration,
			Group:       st.Task.IsGroup,
			After:       st.Task.Predecessors,
			EarlyStart:  st.EarlyStart,
			EarlyFinish: st.EarlyFinish,
			LateStart:   st.LateStart,
			LateFinish:  st.LateFinish,
			Float:       st.Float,
			Critical:    st.IsCritical,
			BlockedBy:   g.Ancestors(st.Task.ID),
			Blocks:      g.Descendants(st.Task.ID),
		}
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
