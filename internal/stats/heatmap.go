package stats

import (
	"fmt"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

// Level maps a day's completion count to a heatmap intensity 0..3.
func Level(count int) int {
	switch {
	case count >= 5:
		return 3
	case count >= 3:
		return 2
	case count >= 1:
		return 1
	default:
		return 0
	}
}

// HeatmapStart returns the first day (YYYY-MM-DD) covered by a window ending today.
func HeatmapStart(window int, now time.Time) string {
	return utils.FormatDay(utils.AddDays(utils.CivilDay(now), -window))
}

// BuildHeatmap returns window+1 cells, oldest first, ending at today.
// Days missing from counts are zero-filled.
func BuildHeatmap(counts map[string]int, window int, now time.Time) ([]models.HeatmapCell, error) {
	if window < 0 {
		return nil, fmt.Errorf("heatmap window must be non-negative, got %d", window)
	}

	start := utils.AddDays(utils.CivilDay(now), -window)
	cells := make([]models.HeatmapCell, 0, window+1)
	for i := 0; i <= window; i++ {
		date := utils.FormatDay(utils.AddDays(start, i))
		count := counts[date]
		cells = append(cells, models.HeatmapCell{
			Date:  date,
			Count: count,
			Level: Level(count),
		})
	}
	return cells, nil
}

// CountByDay tallies events per completion day.
func CountByDay(events []models.CompletionEvent) map[string]int {
	counts := make(map[string]int, len(events))
	for _, e := range events {
		counts[e.Day]++
	}
	return counts
}
