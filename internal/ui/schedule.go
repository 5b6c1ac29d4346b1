package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/critpath/internal/cpm"
)

// TableOptions controls RenderSchedule.
type TableOptions struct {
	// Color enables lipgloss styling. Without it the table is plain text.
	Color bool
	// BarWidth is the maximum width of the Gantt column. Zero uses
	// DefaultBarWidth; a negative value hides the column.
	BarWidth int
}

// DefaultBarWidth is the Gantt column width when TableOptions leaves it unset.
const DefaultBarWidth = 40

// Gantt glyphs.
const (
	barWork  = '█'
	barFloat = '░'
	barIdle  = ' '
)

// Table palette, matching the TUI's.
var (
	colorCritical = lipgloss.Color("#FF5252")
	colorHeader   = lipgloss.Color("#00BFFF")
	colorMuted    = lipgloss.Color("#636363")
)

// RenderSchedule renders s as a bordered table, one row per task in input
// order. Dates are shown when the schedule has an anchor.
func RenderSchedule(s *cpm.Schedule, opts TableOptions) string {
	barWidth := opts.BarWidth
	if barWidth == 0 {
		barWidth = DefaultBarWidth
	}
	dated := !s.Anchor.IsZero()

	headers := []string{"ID", "Name", "Dur", "ES", "EF", "LS", "LF", "Float", "Track", ""}
	if dated {
		headers = append(headers, "Start", "Finish")
	}
	if barWidth > 0 {
		headers = append(headers, "Timeline")
	}

	rows := make([][]string, 0, len(s.Tasks))
	for _, st := range s.Tasks {
		rows = append(rows, scheduleRow(s, st, dated, barWidth))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...)

	if opts.Color {
		headerStyle := lipgloss.NewStyle().Foreground(colorHeader).Bold(true).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if row < 0 || row >= len(s.Tasks) {
					return cell
				}
				st := s.Tasks[row]
				switch {
				case !st.Scheduled:
					return cell.Foreground(colorMuted)
				case st.IsCritical:
					return cell.Foreground(colorCritical).Bold(true)
				default:
					return cell
				}
			})
	} else {
		t = t.StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}

	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteByte('\n')
	sb.WriteString(summaryLine(s))
	sb.WriteByte('\n')
	return sb.String()
}

func scheduleRow(s *cpm.Schedule, st cpm.ScheduledTask, dated bool, barWidth int) []string {
	if !st.Scheduled {
		row := []string{st.Task.ID, st.Task.Name, "", "", "", "", "", "", "", "group"}
		if dated {
			row = append(row, "", "")
		}
		if barWidth > 0 {
			row = append(row, "")
		}
		return row
	}

	mark := ""
	if st.IsCritical {
		mark = "critical"
	}
	row := []string{
		st.Task.ID,
		st.Task.Name,
		strconv.Itoa(st.Task.Duration),
		strconv.Itoa(st.EarlyStart),
		strconv.Itoa(st.EarlyFinish),
		strconv.Itoa(st.LateStart),
		strconv.Itoa(st.LateFinish),
		strconv.Itoa(st.Float),
		strconv.Itoa(st.Track),
		mark,
	}
	if dated {
		row = append(row,
			st.EarlyStartDate(s.Anchor).Format(time.DateOnly),
			st.LateFinishDate(s.Anchor).Format(time.DateOnly))
	}
	if barWidth > 0 {
		row = append(row, GanttBar(st, s.ProjectDuration, barWidth))
	}
	return row
}

// GanttBar draws the task's early window as solid cells and its float as
// shaded cells on a timeline of projectDuration days scaled to at most
// width columns. Milestones occupy a single solid cell.
func GanttBar(st cpm.ScheduledTask, projectDuration, width int) string {
	if projectDuration <= 0 || width <= 0 {
		return ""
	}
	cols := projectDuration
	if cols > width {
		cols = width
	}
	// col maps a day offset to a column; days in [0, projectDuration].
	col := func(day int) int {
		return day * cols / projectDuration
	}

	bar := make([]rune, cols)
	for i := range bar {
		bar[i] = barIdle
	}
	start, workEnd, floatEnd := col(st.EarlyStart), col(st.EarlyFinish), col(st.LateFinish)
	if workEnd == start && start < cols {
		workEnd = start + 1
	}
	for i := start; i < workEnd && i < cols; i++ {
		bar[i] = barWork
	}
	for i := workEnd; i < floatEnd && i < cols; i++ {
		bar[i] = barFloat
	}
	return string(bar)
}

func summaryLine(s *cpm.Schedule) string {
	var sb strings.Builder
	sb.WriteString("duration: ")
	sb.WriteString(strconv.Itoa(s.ProjectDuration))
	sb.WriteString(" day")
	sb.WriteString(pluralS(s.ProjectDuration))
	if !s.Anchor.IsZero() {
		sb.WriteString(" (")
		sb.WriteString(s.Anchor.Format(time.DateOnly))
		sb.WriteString(" → ")
		sb.WriteString(s.Anchor.AddDate(0, 0, s.ProjectDuration).Format(time.DateOnly))
		sb.WriteString(")")
	}
	if len(s.CriticalPath) > 0 {
		sb.WriteString("  critical path: ")
		sb.WriteString(strings.Join(s.CriticalPath, " → "))
	}
	return sb.String()
}
