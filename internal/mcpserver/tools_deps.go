package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/telemetry"
)

// Values of proposeDependencyOutput.Outcome.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
)

// proposeDependencyInput is the input schema for the propose_dependency tool.
type proposeDependencyInput struct {
	Project string `json:"project" jsonschema:"Project name or ID"`
	Source  string `json:"source" jsonschema:"Task that must finish first"`
	Target  string `json:"target" jsonschema:"Task that depends on source"`
	DryRun  bool   `json:"dry_run,omitempty" jsonschema:"Report the outcome without writing"`
}

// proposeDependencyOutput is the output schema for the propose_dependency
// tool. A rejection is a normal result, not a tool error.
type proposeDependencyOutput struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	// Cycle is the existing chain target → … → source the edge would close.
	Cycle []string `json:"cycle,omitempty"`
}

// removeDependencyInput is the input schema for the remove_dependency tool.
type removeDependencyInput struct {
	Project string `json:"project" jsonschema:"Project name or ID"`
	Source  string `json:"source" jsonschema:"Predecessor to drop"`
	Target  string `json:"target" jsonschema:"Task that currently depends on source"`
}

// removeDependencyOutput is the output schema for the remove_dependency tool.
type removeDependencyOutput struct {
	Removed bool `json:"removed"`
}

// registerDependencyTools registers propose_dependency and remove_dependency.
func (s *Server) registerDependencyTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "propose_dependency",
		Description: "Record that target depends on source, unless the edge would close a cycle",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input proposeDependencyInput) (*mcp.CallToolResult, proposeDependencyOutput, error) {
		if input.Project == "" || input.Source == "" || input.Target == "" {
			return nil, proposeDependencyOutput{}, fmt.Errorf("project, source and target are required")
		}
		p, err := s.store.FindProject(ctx, input.Project)
		if err != nil {
			return nil, proposeDependencyOutput{}, err
		}

		var outcome cpm.Outcome
		if input.DryRun {
			tasks, terr := s.store.Tasks(ctx, p.ID)
			if terr != nil {
				return nil, proposeDependencyOutput{}, terr
			}
			outcome, err = cpm.CheckDependency(tasks, input.Source, input.Target)
		} else {
			outcome, err = s.store.AddDependency(ctx, p.ID, input.Source, input.Target)
		}

		data := map[string]any{"source": input.Source, "target": input.Target, "source_api": "mcp"}
		if err != nil {
			if !cpm.IsRejection(err) {
				return nil, proposeDependencyOutput{}, fmt.Errorf("proposing %s → %s: %w", input.Source, input.Target, err)
			}
			out := proposeDependencyOutput{Outcome: outcomeRejected, Reason: err.Error()}
			var ce *cpm.CycleError
			if errors.As(err, &ce) {
				out.Cycle = ce.Path
				data["path"] = ce.Path
			}
			if !input.DryRun {
				data["reason"] = err.Error()
				s.emit(telemetry.Event{Kind: telemetry.KindDependencyRejected, Project: p.Name, TaskID: input.Target, Data: data})
			}
			return nil, out, nil
		}

		out := proposeDependencyOutput{Outcome: outcomeAccepted}
		kind := telemetry.KindDependencyAccepted
		if outcome == cpm.DuplicateEdge {
			out.Outcome = outcomeDuplicate
			kind = telemetry.KindDependencyDuplicate
		}
		if !input.DryRun {
			s.emit(telemetry.Event{Kind: kind, Project: p.Name, TaskID: input.Target, Data: data})
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "remove_dependency",
		Description: "Drop source from target's predecessors",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input removeDependencyInput) (*mcp.CallToolResult, removeDependencyOutput, error) {
		if input.Project == "" || input.Source == "" || input.Target == "" {
			return nil, removeDependencyOutput{}, fmt.Errorf("project, source and target are required")
		}
		p, err := s.store.FindProject(ctx, input.Project)
		if err != nil {
			return nil, removeDependencyOutput{}, err
		}
		removed, err := s.store.RemoveDependency(ctx, p.ID, input.Source, input.Target)
		if err != nil {
			return nil, removeDependencyOutput{}, fmt.Errorf("removing %s → %s: %w", input.Source, input.Target, err)
		}
		return nil, removeDependencyOutput{Removed: removed}, nil
	})
}
