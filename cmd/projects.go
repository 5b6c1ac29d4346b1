package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects stored in the database",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

func init() {
	projectCreateCmd.Flags().String("start", "", "project start date (YYYY-MM-DD)")
	projectCmd.AddCommand(projectCreateCmd, projectListCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	var start time.Time
	if s, _ := cmd.Flags().GetString("start"); s != "" {
		if start, err = time.Parse(time.DateOnly, s); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}

	st, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.CreateProject(cmd.Context(), args[0], start)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	projects, err := st.Projects(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		start := "-"
		if !p.Start.IsZero() {
			start = p.Start.Format(time.DateOnly)
		}
		rows = append(rows, []string{p.Name, start, p.ID})
	}
	_, err = io.WriteString(cmd.OutOrStdout(), ui.RenderList([]string{"NAME", "START", "ID"}, rows, e.cfg.Color))
	return err
}
