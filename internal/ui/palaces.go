package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/ziwei/internal/correlate"
)

var (
	colorPrimary    = lipgloss.Color("#00BFFF")
	colorAccent     = lipgloss.Color("#FFD700")
	colorMuted      = lipgloss.Color("#636363")
	colorMutedLight = lipgloss.Color("#8C8C8C")

	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleBody   = styleCell.Foreground(colorAccent)
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMutedLight)
)

// PalaceTable renders one snapshot's palaces as a bordered table: natal
// stars and the decadal and yearly overlays by role, plus yearly markers.
// The body palace row is highlighted.
func PalaceTable(title string, palaces []correlate.PalaceReport) string {
	rows := make([][]string, 0, len(palaces))
	body := -1
	for i, p := range palaces {
		if p.IsBodyPalace {
			body = i
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.PalaceIndex),
			p.PalaceDisplayName,
			p.HeavenlyStem + p.EarthlyBranch,
			formatStars(p.Natal.MajorStars, p.Natal.MinorStars),
			formatRange(p.DecadalRange),
			formatStars(p.FlowStarsByRole.Decadal),
			formatStars(p.FlowStarsByRole.Yearly),
			formatMarkers(p.YearlyDecStar),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("#", "palace", "stem", "natal", "decadal", "decadal stars", "yearly stars", "markers").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case row == body:
				return styleBody
			default:
				return styleCell
			}
		})

	var sb strings.Builder
	if title != "" {
		sb.WriteString(styleTitle.Render(title))
		sb.WriteString("\n")
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	return sb.String()
}

// formatStars joins star names, each followed by its tags in brackets.
func formatStars(lists ...[]correlate.AnnotatedStar) string {
	var parts []string
	for _, list := range lists {
		for _, s := range list {
			if len(s.Tags) == 0 {
				parts = append(parts, s.Name)
				continue
			}
			parts = append(parts, s.Name+"["+strings.Join(s.Tags, ",")+"]")
		}
	}
	if len(parts) == 0 {
		return styleMuted.Render("-")
	}
	return strings.Join(parts, " ")
}

func formatRange(r []int) string {
	if len(r) != 2 {
		return styleMuted.Render("-")
	}
	return fmt.Sprintf("%d-%d", r[0], r[1])
}

func formatMarkers(m correlate.DecorativeMarkers) string {
	var parts []string
	for _, v := range []*string{m.Suiqian12, m.Jiangqian12} {
		if v != nil && *v != "" {
			parts = append(parts, *v)
		}
	}
	if len(parts) == 0 {
		return styleMuted.Render("-")
	}
	return strings.Join(parts, " ")
}
