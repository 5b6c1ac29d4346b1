package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/project"
	"github.com/papapumpkin/critpath/internal/telemetry"
)

// rejectedError marks a proposal the gate refused so Execute can exit
// with exitRejected.
type rejectedError struct {
	err error
}

func (r *rejectedError) Error() string { return "dependency rejected: " + r.err.Error() }
func (r *rejectedError) Unwrap() error { return r.err }

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Add or remove dependencies between tasks",
}

var depAddCmd = &cobra.Command{
	Use:   "add <source> <target>",
	Short: "Record that target depends on source",
	Long: `Proposes the dependency source → target. The edge is refused if it would
close a cycle; the existing chain it would complete is printed and the
command exits with status 2. Adding an edge that already exists is a no-op.

Without --project the project file is edited in place; with --project the
edge is written to the database.`,
	Args: cobra.ExactArgs(2),
	RunE: runDepAdd,
}

var depRmCmd = &cobra.Command{
	Use:   "rm <source> <target>",
	Short: "Remove the dependency source → target",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepRm,
}

func init() {
	for _, c := range []*cobra.Command{depAddCmd, depRmCmd} {
		c.Flags().StringP("file", "f", "", "project file (default from config)")
		c.Flags().String("project", "", "operate on a project stored in the database")
	}
	depAddCmd.Flags().Bool("dry-run", false, "report what would happen without writing")
	depCmd.AddCommand(depAddCmd, depRmCmd)
	rootCmd.AddCommand(depCmd)
}

func runDepAdd(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	source, target := args[0], args[1]
	edge := cpm.Edge{From: source, To: target}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var outcome cpm.Outcome
	name, _ := cmd.Flags().GetString("project")
	if name != "" {
		outcome, err = e.addStoreDependency(cmd.Context(), name, edge, dryRun)
	} else {
		file, _ := cmd.Flags().GetString("file")
		name = e.projectPath([]string{file})
		outcome, err = e.addFileDependency(name, edge, dryRun)
	}
	return e.reportProposal(name, edge, outcome, err)
}

// addFileDependency gates the edge against the project file and saves the
// file when the edge is accepted.
func (e *env) addFileDependency(path string, edge cpm.Edge, dryRun bool) (cpm.Outcome, error) {
	f, err := project.Load(path)
	if err != nil {
		return 0, err
	}
	tasks := f.EngineTasks()
	if dryRun {
		return cpm.CheckDependency(tasks, edge.From, edge.To)
	}

	outcome, err := cpm.ProposeDependency(tasks, edge.From, edge.To)
	if err != nil || outcome != cpm.Accepted {
		return outcome, err
	}
	f.SetEngineTasks(tasks)
	if err := f.Save(path); err != nil {
		return 0, err
	}
	if e.cfg.Verbose {
		_, _, _ = e.scheduleFile(path)
	}
	return outcome, nil
}

func (e *env) addStoreDependency(ctx context.Context, ref string, edge cpm.Edge, dryRun bool) (cpm.Outcome, error) {
	st, err := e.openStore(ctx)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	p, err := st.FindProject(ctx, ref)
	if err != nil {
		return 0, err
	}
	if dryRun {
		tasks, err := st.Tasks(ctx, p.ID)
		if err != nil {
			return 0, err
		}
		return cpm.CheckDependency(tasks, edge.From, edge.To)
	}
	return st.AddDependency(ctx, p.ID, edge.From, edge.To)
}

// reportProposal prints and records the outcome of a proposal. Gate
// rejections are wrapped in rejectedError; other failures pass through.
func (e *env) reportProposal(projectName string, edge cpm.Edge, outcome cpm.Outcome, err error) error {
	data := map[string]any{"source": edge.From, "target": edge.To}
	if err != nil {
		if !cpm.IsRejection(err) {
			return err
		}
		var ce *cpm.CycleError
		if errors.As(err, &ce) {
			data["path"] = ce.Path
		}
		data["reason"] = err.Error()
		e.emit(telemetry.Event{Kind: telemetry.KindDependencyRejected, Project: projectName, TaskID: edge.To, Data: data})
		e.printer.Rejected(err)
		return &rejectedError{err: err}
	}

	switch outcome {
	case cpm.Accepted:
		e.emit(telemetry.Event{Kind: telemetry.KindDependencyAccepted, Project: projectName, TaskID: edge.To, Data: data})
		e.printer.Accepted(edge)
	case cpm.DuplicateEdge:
		e.emit(telemetry.Event{Kind: telemetry.KindDependencyDuplicate, Project: projectName, TaskID: edge.To, Data: data})
		e.printer.Duplicate(edge)
	default:
		return fmt.Errorf("unexpected outcome %v", outcome)
	}
	return nil
}

func runDepRm(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	source, target := args[0], args[1]
	ref, _ := cmd.Flags().GetString("project")
	var removed bool
	if ref != "" {
		removed, err = e.removeStoreDependency(cmd.Context(), ref, source, target)
	} else {
		file, _ := cmd.Flags().GetString("file")
		removed, err = removeFileDependency(e.projectPath([]string{file}), source, target)
	}
	if err != nil {
		return err
	}
	if !removed {
		e.printer.Warn(fmt.Sprintf("%s does not depend on %s", target, source))
		return nil
	}
	e.printer.Info(fmt.Sprintf("removed %s → %s", source, target))
	return nil
}

func (e *env) removeStoreDependency(ctx context.Context, ref, source, target string) (bool, error) {
	st, err := e.openStore(ctx)
	if err != nil {
		return false, err
	}
	defer st.Close()
	p, err := st.FindProject(ctx, ref)
	if err != nil {
		return false, err
	}
	return st.RemoveDependency(ctx, p.ID, source, target)
}

func removeFileDependency(path, source, target string) (bool, error) {
	f, err := project.Load(path)
	if err != nil {
		return false, err
	}
	removed := false
	for i := range f.Tasks {
		if f.Tasks[i].ID != target {
			continue
		}
		kept := f.Tasks[i].After[:0]
		for _, p := range f.Tasks[i].After {
			if p == source {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		f.Tasks[i].After = kept
	}
	if !removed {
		return false, nil
	}
	return true, f.Save(path)
}
