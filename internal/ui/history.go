package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/ziwei/internal/history"
)

// HistoryTable renders saved report summaries, newest first as given.
// IDs are shortened to their first eight characters; any unique prefix is
// accepted by the history commands.
func HistoryTable(entries []history.Entry) string {
	if len(entries) == 0 {
		return styleMuted.Render("no saved reports") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		failures := fmt.Sprintf("%d", e.FailureCount)
		if e.FailureCount == 0 {
			failures = styleMuted.Render("0")
		}
		mapping := ""
		if e.IncludeIndexMapping {
			mapping = "yes"
		}
		rows = append(rows, []string{
			shortID(e.ID),
			e.GeneratedAt.Local().Format(time.DateTime),
			e.BirthDate,
			e.BaseDate,
			fmt.Sprintf("%d", e.FutureCount),
			failures,
			mapping,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("id", "generated", "birth", "base date", "future", "failed", "index map").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
