package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/project"
	"github.com/papapumpkin/critpath/internal/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Move projects between TOML files and the database",
}

var dbImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a project file into the database",
	Long: `Loads a project file, checks it as a whole for cycles and bad durations,
and replaces the tasks of the named project (created if missing) with the
file's tasks. The project name defaults to the file's [project] name, then
to the file name.`,
	Args: cobra.ExactArgs(1),
	RunE: runDBImport,
}

var dbExportCmd = &cobra.Command{
	Use:   "export <project> <file>",
	Short: "Write a stored project to a project file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDBExport,
}

func init() {
	dbImportCmd.Flags().String("project", "", "target project name")
	dbCmd.AddCommand(dbImportCmd, dbExportCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBImport(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	f, err := project.Load(args[0])
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("project")
	if name == "" {
		name = f.Project.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	ctx := cmd.Context()
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.FindProject(ctx, name)
	if errors.Is(err, store.ErrProjectNotFound) {
		p, err = st.CreateProject(ctx, name, f.StartDate())
	}
	if err != nil {
		return err
	}
	if err := st.ImportTasks(ctx, p.ID, f.EngineTasks()); err != nil {
		return err
	}
	e.printer.Info(fmt.Sprintf("imported %d task(s) into %s", len(f.Tasks), p.Name))
	return nil
}

func runDBExport(cmd *cobra.Command, args []string) error {
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

	p, err := st.FindProject(ctx, args[0])
	if err != nil {
		return err
	}
	tasks, err := st.Tasks(ctx, p.ID)
	if err != nil {
		return err
	}

	f := &project.File{Project: project.Info{Name: p.Name}}
	f.SetStartDate(p.Start)
	f.SetEngineTasks(tasks)
	if err := f.Save(args[1]); err != nil {
		return err
	}
	e.printer.Info(fmt.Sprintf("exported %d task(s) to %s", len(tasks), args[1]))
	return nil
}
