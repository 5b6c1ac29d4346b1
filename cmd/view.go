package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/tui"
	"github.com/papapumpkin/critpath/internal/watch"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open a live terminal view of the project schedule",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	path := e.projectPath(args)
	w, err := watch.NewWatcher(path, e.cfg.Debounce())
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	load := func() (*cpm.Schedule, error) {
		_, s, err := e.scheduleFile(path)
		return s, err
	}
	p := tui.NewProgram(tui.NewModel(filepath.Base(path), tui.ReloadFunc(load)))
	bridge := tui.NewBridge(p, load)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go bridge.Run(ctx, w.Changes)

	return tui.Run(p)
}
