package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/critpath/internal/config"
	"github.com/papapumpkin/critpath/internal/cpm"
	"github.com/papapumpkin/critpath/internal/project"
	"github.com/papapumpkin/critpath/internal/store"
	"github.com/papapumpkin/critpath/internal/telemetry"
	"github.com/papapumpkin/critpath/internal/ui"
)

// env bundles what every command needs: configuration, a status printer
// and the telemetry emitter. Close releases the emitter.
type env struct {
	cfg     config.Config
	printer *ui.Printer
	events  *telemetry.Emitter
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e := &env{cfg: cfg, printer: ui.NewPrinter(cmd.ErrOrStderr(), cfg.Color)}
	if cfg.EventsPath != "" {
		if e.events, err = telemetry.NewEmitter(cfg.EventsPath); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *env) Close() {
	if err := e.events.Close(); err != nil {
		e.printer.Warn(err.Error())
	}
}

// emit records an event, downgrading write failures to a warning.
func (e *env) emit(evt telemetry.Event) {
	if err := e.events.Emit(evt); err != nil {
		e.printer.Warn(err.Error())
	}
}

// projectPath returns the file named on the command line, or the
// configured default.
func (e *env) projectPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return e.cfg.ProjectFile
}

func (e *env) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, e.cfg.DBPath)
}

// scheduleFile loads and schedules the project file at path, recording the
// outcome as telemetry.
func (e *env) scheduleFile(path string) (*project.File, *cpm.Schedule, error) {
	f, err := project.Load(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := f.Schedule()
	e.recordSchedule(path, s, err)
	if err != nil {
		return f, nil, err
	}
	return f, s, nil
}

// recordSchedule emits schedule_computed, or structural_violation when the
// engine reported a broken invariant.
func (e *env) recordSchedule(projectName string, s *cpm.Schedule, err error) {
	if err != nil {
		var se *cpm.StructuralError
		if errors.As(err, &se) {
			e.emit(telemetry.Event{
				Kind:    telemetry.KindStructuralViolation,
				Project: projectName,
				Data:    map[string]any{"kind": string(se.Kind), "tasks": se.TaskIDs},
			})
		}
		return
	}
	e.emit(telemetry.Event{
		Kind:    telemetry.KindScheduleComputed,
		Project: projectName,
		Data: map[string]any{
			"duration":      s.ProjectDuration,
			"critical_path": s.CriticalPath,
			"tasks":         len(s.Tasks),
		},
	})
	if e.cfg.Verbose {
		e.printer.Rescheduled(s)
	}
}

// writeSchedule prints s to w in the configured format.
func (e *env) writeSchedule(w io.Writer, s *cpm.Schedule, graph bool) error {
	if e.cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	if graph {
		_, err := io.WriteString(w, (&ui.GraphRenderer{UseColor: e.cfg.Color}).Render(s))
		return err
	}
	_, err := io.WriteString(w, ui.RenderSchedule(s, ui.TableOptions{Color: e.cfg.Color}))
	return err
}
