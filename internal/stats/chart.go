package stats

import (
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

// AggregateChart sums work-session minutes per bucket of period. Sessions
// before the period's lower bound are dropped and timestamps are bucketed in
// now's location. Only populated buckets are returned, in label order.
func AggregateChart(sessions []models.FocusSession, period Period, now time.Time) ([]models.ChartPoint, error) {
	b, err := period.Buckets()
	if err != nil {
		return nil, err
	}

	since := b.Since(now)
	totals := make(map[string]int)
	for _, s := range sessions {
		if s.Mode != models.FocusModeWork {
			continue
		}
		at := s.CompletedAt.In(now.Location())
		if at.Before(since) {
			continue
		}
		totals[b.Key(at)] += s.DurationMinutes
	}

	points := make([]models.ChartPoint, 0, len(totals))
	for _, label := range b.Labels() {
		if v, ok := totals[label]; ok {
			points = append(points, models.ChartPoint{Label: label, Value: v})
		}
	}
	return points, nil
}

// ChartTemplate returns a zero-valued point for every label of period.
func ChartTemplate(period Period) ([]models.ChartPoint, error) {
	b, err := period.Buckets()
	if err != nil {
		return nil, err
	}
	labels := b.Labels()
	points := make([]models.ChartPoint, len(labels))
	for i, label := range labels {
		points[i] = models.ChartPoint{Label: label}
	}
	return points, nil
}

// WithDefaultTemplate substitutes the zero template when points is empty so
// charts never render blank.
func WithDefaultTemplate(points []models.ChartPoint, period Period) ([]models.ChartPoint, error) {
	if len(points) > 0 {
		return points, nil
	}
	return ChartTemplate(period)
}
