package cmd

import (
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [file]",
	Short: "Compute and print the schedule of a project",
	Long: `Loads a project file (or, with --project, a project from the database),
runs the forward and backward passes and prints every task's early and late
dates, float and critical status.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("project", "", "schedule a project stored in the database")
	scheduleCmd.Flags().Bool("graph", false, "draw the dependency graph instead of the table")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	graph, _ := cmd.Flags().GetBool("graph")
	ref, _ := cmd.Flags().GetString("project")
	if ref != "" {
		st, err := e.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := st.Schedule(cmd.Context(), ref)
		e.recordSchedule(ref, s, err)
		if err != nil {
			return err
		}
		return e.writeSchedule(cmd.OutOrStdout(), s, graph)
	}

	_, s, err := e.scheduleFile(e.projectPath(args))
	if err != nil {
		return err
	}
	return e.writeSchedule(cmd.OutOrStdout(), s, graph)
}
