package stats

import (
	"math"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

// MonthlyRate compares completions against habitCount x daysElapsed.
// The rate is not capped at 100: make-up entries can push it past the baseline.
func MonthlyRate(completed, habitCount, daysElapsed int) models.MonthlyRate {
	expected := habitCount * daysElapsed
	if habitCount <= 0 || daysElapsed <= 0 {
		expected = 0
	}
	r := models.MonthlyRate{Completed: completed, Total: expected}
	if expected == 0 {
		return r
	}
	r.Rate = max(0, int(math.Round(float64(completed)/float64(expected)*100)))
	return r
}

// MonthStart returns the first day of now's month and the number of days
// elapsed in it, today included.
func MonthStart(now time.Time) (string, int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return utils.FormatDay(first), now.Day()
}
