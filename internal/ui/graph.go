package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/papapumpkin/critpath/internal/ansi"
	"github.com/papapumpkin/critpath/internal/cpm"
)

// GraphRenderer draws a schedule as compact dependency lines grouped into
// waves. A wave is the set of tasks sharing an early start, so reading top
// to bottom follows the timeline.
type GraphRenderer struct {
	// UseColor controls whether ANSI escape codes are emitted.
	UseColor bool
}

// Render produces one block per wave. Each task is followed by arrows to
// its direct successors; an arrow along a critical edge is drawn as ⇒.
// Critical tasks are bold red, or suffixed with * when color is off.
// Group tasks are not drawn.
func (r *GraphRenderer) Render(s *cpm.Schedule) string {
	tasks := make([]cpm.Task, len(s.Tasks))
	scheduled := make(map[string]cpm.ScheduledTask, len(s.Tasks))
	for i, st := range s.Tasks {
		tasks[i] = st.Task
		if st.Scheduled {
			if _, dup := scheduled[st.Task.ID]; !dup {
				scheduled[st.Task.ID] = st
			}
		}
	}
	if len(scheduled) == 0 {
		return ""
	}
	g := cpm.BuildGraph(tasks)
	critical := make(map[cpm.Edge]bool, len(s.CriticalEdges))
	for _, e := range s.CriticalEdges {
		critical[e] = true
	}

	byStart := make(map[int][]string)
	for id, st := range scheduled {
		byStart[st.EarlyStart] = append(byStart[st.EarlyStart], id)
	}
	starts := make([]int, 0, len(byStart))
	for es := range byStart {
		starts = append(starts, es)
	}
	sort.Ints(starts)

	var sb strings.Builder
	for wi, es := range starts {
		if wi > 0 {
			sb.WriteByte('\n')
		}
		ids := byStart[es]
		sort.Strings(ids)

		label := fmt.Sprintf("Day %d: ", es)
		sb.WriteString(r.applyColor(label, ansi.Dim))
		for ni, id := range ids {
			if ni > 0 {
				sb.WriteString(strings.Repeat(" ", len(label)))
			}
			node := r.node(scheduled[id])
			sb.WriteString(node)
			for ci, child := range g.Successors(id) {
				if ci > 0 {
					sb.WriteByte('\n')
					sb.WriteString(strings.Repeat(" ", len(label)+visibleLen(node)))
				}
				sb.WriteString(r.arrow(critical[cpm.Edge{From: id, To: child}]))
				sb.WriteString(r.node(scheduled[child]))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (r *GraphRenderer) arrow(critical bool) string {
	if !critical {
		return " → "
	}
	return " " + r.applyColor("⇒", ansi.Bold+ansi.Red) + " "
}

// node renders a task as [id] or [id:name].
func (r *GraphRenderer) node(st cpm.ScheduledTask) string {
	label := st.Task.ID
	if st.Task.Name != "" && st.Task.Name != st.Task.ID {
		label += ":" + st.Task.Name
	}
	text := "[" + label + "]"
	if !r.UseColor {
		if st.IsCritical {
			return text + "*"
		}
		return text
	}
	if st.IsCritical {
		return ansi.Bold + ansi.Red + text + ansi.Reset
	}
	return ansi.Blue + text + ansi.Reset
}

// applyColor wraps text with the given ANSI code if UseColor is true.
func (r *GraphRenderer) applyColor(text, code string) string {
	return ansi.Paint(r.UseColor, text, code)
}

// visibleLen returns the visible length of a string, stripping ANSI escapes.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, c := range s {
		if c == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				inEscape = false
			}
			continue
		}
		n++
	}
	return n
}
