package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderList renders rows under headers as a borderless listing with a
// rule under the header. Used by the task and project listings.
func RenderList(headers []string, rows [][]string, color bool) string {
	header := lipgloss.NewStyle().Bold(color).PaddingRight(2)
	cell := lipgloss.NewStyle().PaddingRight(2)
	if color {
		header = header.Foreground(colorHeader)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	return t.Render() + "\n"
}
