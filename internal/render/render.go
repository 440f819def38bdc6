// Package render draws statistics for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
)

const (
	cellGlyph = "■"
	barGlyph  = "█"
)

var (
	levelStyles = [4]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var weekdayRows = []string{"Mon", "", "Wed", "", "Fri", "", "Sun"}

// Heatmap lays cells out as weekday rows by week columns, oldest on the left.
func Heatmap(cells []models.HeatmapCell) string {
	if len(cells) == 0 {
		return labelStyle.Render("no days in range")
	}

	first, err := time.Parse(constants.DateFormat, cells[0].Date)
	if err != nil {
		return labelStyle.Render("invalid heatmap: " + err.Error())
	}
	// Monday = row 0
	offset := (int(first.Weekday()) + 6) % 7
	cols := (offset + len(cells) + 6) / 7

	grid := make([][]string, 7)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	for i, cell := range cells {
		pos := offset + i
		level := min(max(cell.Level, 0), 3)
		grid[pos%7][pos/7] = levelStyles[level].Render(cellGlyph)
	}

	var b strings.Builder
	for r, row := range grid {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-4s", weekdayRows[r])))
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	b.WriteString(Legend())
	return b.String()
}

// Legend renders the level scale.
func Legend() string {
	parts := make([]string, 0, len(levelStyles))
	for _, s := range levelStyles {
		parts = append(parts, s.Render(cellGlyph))
	}
	return labelStyle.Render("    less ") + strings.Join(parts, " ") + labelStyle.Render(" more")
}

// Chart draws one horizontal bar per point scaled to the largest value.
func Chart(points []models.ChartPoint, width int) string {
	if width < 1 {
		width = 30
	}
	labelWidth, peak := 0, 0
	for _, p := range points {
		labelWidth = max(labelWidth, lipgloss.Width(p.Label))
		peak = max(peak, p.Value)
	}

	var b strings.Builder
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = p.Value * width / peak
		}
		if p.Value > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, p.Label)),
			barStyle.Render(strings.Repeat(barGlyph, n))+strings.Repeat(" ", width-n),
			valueStyle.Render(fmt.Sprintf("%dm", p.Value)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Streak renders the current and best streak.
func Streak(s models.StreakSummary) string {
	return fmt.Sprintf("%s %s   %s %s",
		titleStyle.Render("Current streak:"), valueStyle.Render(pluralDays(s.CurrentStreak)),
		titleStyle.Render("Best:"), valueStyle.Render(pluralDays(s.MaxStreak)))
}

// Monthly renders the month's completion rate.
func Monthly(r models.MonthlyRate) string {
	return fmt.Sprintf("%s %s %s",
		titleStyle.Render("This month:"),
		valueStyle.Render(fmt.Sprintf("%d%%", r.Rate)),
		labelStyle.Render(fmt.Sprintf("(%d of %d expected)", r.Completed, r.Total)))
}

// Summary combines every statistic into one boxed report.
func Summary(s stats.Summary, width int) string {
	sections := []string{
		Streak(s.Streak),
		Monthly(s.Monthly),
		"",
		titleStyle.Render(HeatmapTitle(s.Heatmap)),
		Heatmap(s.Heatmap),
		"",
		titleStyle.Render(fmt.Sprintf("Focus minutes (%s)", s.Period)),
		Chart(s.Chart, width),
	}
	return boxStyle.Render(strings.Join(sections, "\n"))
}

// HeatmapTitle names the date range covered by cells.
func HeatmapTitle(cells []models.HeatmapCell) string {
	if len(cells) == 0 {
		return "Completions"
	}
	return fmt.Sprintf("Completions %s to %s", cells[0].Date, cells[len(cells)-1].Date)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}
