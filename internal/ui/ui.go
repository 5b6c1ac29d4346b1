// Package ui provides stderr-based status output and plain-text schedule
// rendering for critpath.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papapumpkin/critpath/internal/ansi"
	"github.com/papapumpkin/critpath/internal/cpm"
)

// Printer writes one-line, optionally colored status messages. The zero
// value is not usable; call New or NewPrinter.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a Printer writing colored output to stderr.
func New() *Printer {
	return NewPrinter(os.Stderr, true)
}

// NewPrinter returns a Printer writing to w. When color is false no ANSI
// escape codes are emitted.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) paint(s string, codes ...string) string {
	return ansi.Paint(p.color, s, codes...)
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.paint(msg, ansi.Dim))
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint("⚠ warning:", ansi.Yellow, ansi.Bold), msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint("error:", ansi.Red, ansi.Bold), msg)
}

// Accepted reports a dependency the gate added.
func (p *Printer) Accepted(e cpm.Edge) {
	fmt.Fprintf(p.w, "%s %s → %s\n", p.paint("✓ accepted", ansi.Green, ansi.Bold), e.From, e.To)
}

// Duplicate reports a dependency that was already recorded.
func (p *Printer) Duplicate(e cpm.Edge) {
	fmt.Fprintf(p.w, "%s %s → %s %s\n",
		p.paint("= duplicate", ansi.Cyan), e.From, e.To, p.paint("(already recorded)", ansi.Dim))
}

// Rejected reports a refused proposal. A cycle is shown with the chain
// it would have closed.
func (p *Printer) Rejected(err error) {
	var ce *cpm.CycleError
	if errors.As(err, &ce) {
		fmt.Fprintf(p.w, "%s %s → %s\n", p.paint("✗ rejected", ansi.Red, ansi.Bold), ce.Source, ce.Target)
		fmt.Fprintf(p.w, "  %s %s\n", p.paint("cycle:", ansi.Dim), formatLoop(ce))
		return
	}
	fmt.Fprintf(p.w, "%s %v\n", p.paint("✗ rejected", ansi.Red, ansi.Bold), err)
}

// Rescheduled prints a one-line summary of a freshly computed schedule.
func (p *Printer) Rescheduled(s *cpm.Schedule) {
	scheduled := 0
	for _, t := range s.Tasks {
		if t.Scheduled {
			scheduled++
		}
	}
	line := fmt.Sprintf("%d task%s, %d day%s", scheduled, pluralS(scheduled), s.ProjectDuration, pluralS(s.ProjectDuration))
	if len(s.CriticalPath) > 0 {
		line += p.paint(" · critical: ", ansi.Dim) + strings.Join(s.CriticalPath, " → ")
	}
	fmt.Fprintf(p.w, "%s %s\n", p.paint("◆ rescheduled", ansi.Magenta, ansi.Bold), line)
}

// ValidateResult reports the outcome of a structural check of a project.
func (p *Printer) ValidateResult(name string, taskCount int, err error) {
	if err == nil {
		fmt.Fprintf(p.w, "%s · %d task%s, no errors\n",
			p.paint(fmt.Sprintf("✓ project %q", name), ansi.Green, ansi.Bold), taskCount, pluralS(taskCount))
		return
	}
	fmt.Fprintf(p.w, "%s\n", p.paint(fmt.Sprintf("✗ project %q", name), ansi.Red, ansi.Bold))
	var ce *cpm.CycleError
	if errors.As(err, &ce) {
		fmt.Fprintf(p.w, "  %s cycle %s\n", p.paint("•", ansi.Red), formatLoop(ce))
		return
	}
	fmt.Fprintf(p.w, "  %s %v\n", p.paint("•", ansi.Red), err)
}

// formatLoop renders the closed loop target → … → source → target.
func formatLoop(ce *cpm.CycleError) string {
	if len(ce.Path) == 0 {
		return ce.Source + " → " + ce.Target
	}
	loop := append(append([]string(nil), ce.Path...), ce.Path[0])
	return strings.Join(loop, " → ")
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
