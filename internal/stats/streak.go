package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

// ComputeStreak reduces completion dates to the current and longest runs of
// consecutive calendar days. Dates are compared by their own calendar date;
// now supplies "today" in the reference time zone. Dates after today are ignored.
func ComputeStreak(dates []time.Time, now time.Time) models.StreakSummary {
	today := utils.CivilDay(now)

	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := utils.CivilDay(d)
		if day.After(today) {
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	if len(days) == 0 {
		return models.StreakSummary{}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	current := 0
	if utils.DaysBetween(days[0], today) <= 1 {
		current = 1
		for i := 1; i < len(days); i++ {
			if utils.DaysBetween(days[i], days[i-1]) != 1 {
				break
			}
			current++
		}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if utils.DaysBetween(days[i], days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	return models.StreakSummary{
		CurrentStreak: current,
		MaxStreak:     max(longest, current),
	}
}

func completionDays(events []models.CompletionEvent) ([]time.Time, error) {
	days := make([]time.Time, 0, len(events))
	for _, e := range events {
		d, err := utils.ParseDay(e.Day)
		if err != nil {
			return nil, fmt.Errorf("completion %s: %w", e.ID, err)
		}
		days = append(days, d)
	}
	return days, nil
}
