package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/ansi"
	"github.com/papapumpkin/critpath/internal/telemetry"
	"github.com/papapumpkin/critpath/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Reschedule and reprint whenever the project file changes",
	Long: `Prints the schedule, then watches the project file and prints a fresh
schedule after every settled edit. Bursts of writes are coalesced
(debounce_ms). Errors in the file are reported and the last good schedule
stays on screen until the file is fixed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("graph", false, "draw the dependency graph instead of the table")
	watchCmd.Flags().Bool("no-clear", false, "do not clear the screen between redraws")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	graph, _ := cmd.Flags().GetBool("graph")
	noClear, _ := cmd.Flags().GetBool("no-clear")
	path := e.projectPath(args)
	out := cmd.OutOrStdout()

	redraw := func() {
		_, s, err := e.scheduleFile(path)
		if err != nil {
			e.printer.Error(err.Error())
			return
		}
		if !noClear && e.cfg.Format != "json" {
			fmt.Fprint(out, ansi.ClearScreen)
		}
		if err := e.writeSchedule(out, s, graph); err != nil {
			e.printer.Error(err.Error())
			return
		}
		e.printer.Info(fmt.Sprintf("watching %s · updated %s", path, time.Now().Format(time.TimeOnly)))
	}

	w, err := watch.NewWatcher(path, e.cfg.Debounce())
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	redraw()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			return nil
		case <-cmd.Context().Done():
			return nil
		case err, ok := <-w.Errors:
			if ok {
				e.printer.Warn(err.Error())
			}
		case c, ok := <-w.Changes:
			if !ok {
				return nil
			}
			e.emit(telemetry.Event{Kind: telemetry.KindFileChanged, Project: path, Data: map[string]string{"change": c.Kind.String()}})
			if c.Kind == watch.ChangeRemoved {
				e.printer.Warn(path + " was removed; waiting for it to come back")
				continue
			}
			redraw()
		}
	}
}
