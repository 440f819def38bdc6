package render

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
)

func TestHeatmapGrid(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) // Friday
	cells, err := stats.BuildHeatmap(map[string]int{"2026-10-16": 5}, 13, now)
	require.NoError(t, err)

	out := Heatmap(cells)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8, "7 weekday rows plus legend")
	assert.True(t, strings.HasPrefix(lines[0], "Mon"))
	assert.True(t, strings.HasPrefix(lines[6], "Sun"))

	total := strings.Count(out, cellGlyph) - 4 // legend has one glyph per level
	assert.Equal(t, len(cells), total)
}

func TestHeatmapEmpty(t *testing.T) {
	assert.Contains(t, Heatmap(nil), "no days")
}

func TestChartScalesToPeak(t *testing.T) {
	points := []models.ChartPoint{
		{Label: "09:00", Value: 50},
		{Label: "14:00", Value: 25},
		{Label: "20:00", Value: 1},
	}
	out := Chart(points, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, 10, strings.Count(lines[0], barGlyph))
	assert.Equal(t, 5, strings.Count(lines[1], barGlyph))
	assert.Equal(t, 1, strings.Count(lines[2], barGlyph), "small non-zero values still get a bar")
	assert.Contains(t, lines[0], "50m")
	col := func(line, v string) int { return utf8.RuneCountInString(line[:strings.Index(line, v)]) }
	assert.Equal(t, col(lines[0], "50m"), col(lines[1], "25m"), "values should be aligned")
}

func TestChartTemplateHasNoBars(t *testing.T) {
	tmpl, err := stats.ChartTemplate(stats.PeriodWeek)
	require.NoError(t, err)
	out := Chart(tmpl, 20)
	assert.Zero(t, strings.Count(out, barGlyph))
	assert.Equal(t, 7, len(strings.Split(out, "\n")))
}

func TestSummary(t *testing.T) {
	sum := stats.Summary{
		OwnerID: "alice",
		Streak:  models.StreakSummary{CurrentStreak: 1, MaxStreak: 4},
		Monthly: models.MonthlyRate{Completed: 5, Total: 32, Rate: 16},
		Heatmap: []models.HeatmapCell{{Date: "2026-10-15"}, {Date: "2026-10-16", Count: 1, Level: 1}},
		Period:  stats.PeriodYear,
		Chart:   []models.ChartPoint{{Label: "Q4", Value: 75}},
	}
	out := Summary(sum, 20)
	for _, want := range []string{"1 day", "4 days", "16%", "(5 of 32 expected)", "Completions 2026-10-15 to 2026-10-16", "Focus minutes (year)", "75m"} {
		assert.Contains(t, out, want)
	}
}
