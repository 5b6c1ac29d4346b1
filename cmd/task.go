package cmd

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks of a project stored in the database",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or update a task",
	Long: `Adds a task, or updates the attributes of an existing one. Only the
attributes named by a flag change; a new task defaults to one day. Each
--after predecessor is proposed through the cycle check; if any is refused
the task is left unchanged. Marking a task --group drops its dependencies.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskAdd,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a task and every dependency that names it",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tasks of a project",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

func init() {
	for _, c := range []*cobra.Command{taskAddCmd, taskRmCmd, taskListCmd} {
		c.Flags().StringP("project", "p", "", "project name or ID (required)")
		_ = c.MarkFlagRequired("project")
	}
	taskAddCmd.Flags().String("name", "", "display name")
	taskAddCmd.Flags().IntP("duration", "d", 1, "duration in days (0 for a milestone, new tasks default to 1)")
	taskAddCmd.Flags().StringSlice("after", nil, "predecessor task IDs")
	taskAddCmd.Flags().String("start", "", "advisory start date (YYYY-MM-DD)")
	taskAddCmd.Flags().Bool("group", false, "mark as a group task")

	taskCmd.AddCommand(taskAddCmd, taskRmCmd, taskListCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ref, _ := cmd.Flags().GetString("project")
	p, err := st.FindProject(ctx, ref)
	if err != nil {
		return err
	}
	tasks, err := st.Tasks(ctx, p.ID)
	if err != nil {
		return err
	}

	// Attributes whose flag was not given keep their stored value.
	flags := cmd.Flags()
	task := cpm.Task{ID: args[0], Duration: 1}
	if i := slices.IndexFunc(tasks, func(t cpm.Task) bool { return t.ID == args[0] }); i >= 0 {
		task = tasks[i]
		task.Predecessors = nil
	}
	if flags.Changed("name") {
		task.Name, _ = flags.GetString("name")
	}
	if flags.Changed("duration") {
		task.Duration, _ = flags.GetInt("duration")
	}
	if flags.Changed("group") {
		task.IsGroup, _ = flags.GetBool("group")
	}
	if flags.Changed("start") {
		start, _ := flags.GetString("start")
		task.StartDate = time.Time{}
		if start != "" {
			if task.StartDate, err = time.Parse(time.DateOnly, start); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
	}
	task.Predecessors, _ = flags.GetStringSlice("after")

	if err := st.PutTask(ctx, p.ID, task); err != nil {
		if cpm.IsRejection(err) {
			e.printer.Rejected(err)
			return &rejectedError{err: err}
		}
		return err
	}
	e.printer.Info(fmt.Sprintf("saved task %s in %s", task.ID, p.Name))
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ref, _ := cmd.Flags().GetString("project")
	p, err := st.FindProject(ctx, ref)
	if err != nil {
		return err
	}
	if err := st.DeleteTask(ctx, p.ID, args[0]); err != nil {
		return err
	}
	e.printer.Info(fmt.Sprintf("removed task %s from %s", args[0], p.Name))
	return nil
}

func runTaskList(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ref, _ := cmd.Flags().GetString("project")
	p, err := st.FindProject(ctx, ref)
	if err != nil {
		return err
	}
	tasks, err := st.Tasks(ctx, p.ID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		dur := strconv.Itoa(t.Duration)
		if t.IsGroup {
			dur = "group"
		}
		rows = append(rows, []string{t.ID, t.Name, dur, strings.Join(t.Predecessors, ",")})
	}
	_, err = io.WriteString(cmd.OutOrStdout(), ui.RenderList([]string{"ID", "NAME", "DURATION", "AFTER"}, rows, e.cfg.Color))
	return err
}
