package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

func TestLevel(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 100: 3, -1: 0}
	for count, want := range cases {
		assert.Equal(t, want, Level(count), "Level(%d)", count)
	}

	prev := Level(0)
	for c := 1; c <= 50; c++ {
		l := Level(c)
		assert.GreaterOrEqual(t, l, prev, "Level must be monotonic at %d", c)
		prev = l
	}
}

func TestBuildHeatmapScenario(t *testing.T) {
	counts := map[string]int{
		"2026-10-13": 0,
		"2026-10-14": 2,
		"2026-10-15": 4,
		"2026-10-16": 6,
	}

	cells, err := BuildHeatmap(counts, 3, refNow)
	require.NoError(t, err)
	require.Len(t, cells, 4)

	var levels []int
	for _, c := range cells {
		levels = append(levels, c.Level)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, levels)
	assert.Equal(t, "2026-10-13", cells[0].Date)
	assert.Equal(t, "2026-10-16", cells[3].Date)
}

func TestBuildHeatmapLengthIgnoresSparsity(t *testing.T) {
	for _, window := range []int{0, 1, 7, 90, 365} {
		empty, err := BuildHeatmap(nil, window, refNow)
		require.NoError(t, err)
		assert.Len(t, empty, window+1)

		sparse, err := BuildHeatmap(map[string]int{"2026-10-16": 1, "1999-01-01": 9}, window, refNow)
		require.NoError(t, err)
		assert.Len(t, sparse, window+1)
		assert.Equal(t, 1, sparse[len(sparse)-1].Count)
	}
}

func TestBuildHeatmapCrossesMonthAndLeapDay(t *testing.T) {
	now := time.Date(2028, 3, 1, 8, 0, 0, 0, time.UTC)
	cells, err := BuildHeatmap(map[string]int{"2028-02-29": 3}, 2, now)
	require.NoError(t, err)
	assert.Equal(t, []models.HeatmapCell{
		{Date: "2028-02-28", Count: 0, Level: 0},
		{Date: "2028-02-29", Count: 3, Level: 2},
		{Date: "2028-03-01", Count: 0, Level: 0},
	}, cells)
}

func TestBuildHeatmapRejectsNegativeWindow(t *testing.T) {
	_, err := BuildHeatmap(nil, -1, refNow)
	assert.Error(t, err)
}

func TestCountByDay(t *testing.T) {
	counts := CountByDay([]models.CompletionEvent{
		{HabitID: "a", Day: "2026-10-16"},
		{HabitID: "b", Day: "2026-10-16"},
		{HabitID: "a", Day: "2026-10-15"},
	})
	assert.Equal(t, map[string]int{"2026-10-16": 2, "2026-10-15": 1}, counts)
}

func TestHeatmapStart(t *testing.T) {
	assert.Equal(t, "2026-10-16", HeatmapStart(0, refNow))
	assert.Equal(t, "2026-07-18", HeatmapStart(90, refNow))
}
