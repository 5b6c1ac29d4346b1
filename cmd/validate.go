package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/project"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a project file for duplicate IDs, bad durations and cycles",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	path := e.projectPath(args)
	f, err := project.Load(path)
	if err != nil {
		e.printer.Error(err.Error())
		return fmt.Errorf("validation failed: %w", err)
	}

	name := f.Project.Name
	if name == "" {
		name = filepath.Base(path)
	}
	tasks := f.EngineTasks()
	if err := cpm.Validate(tasks); err != nil {
		e.printer.ValidateResult(name, len(tasks), err)
		return fmt.Errorf("validation failed: %w", err)
	}
	e.printer.ValidateResult(name, len(tasks), nil)
	return nil
}
