package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	apperrors "github.com/zsy-dream/HabitMaster-pioneer/internal/errors"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/logger"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/metrics"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

const (
	opCompletionDates = "completion dates"
	opFocusSessions   = "focus sessions"
	opHabitCount      = "habit count"
)

var errMissingNow = errors.New("reference time is required")

// Scope carries the owner and reference clock for one aggregation.
// Location, when set, overrides Now's location for calendar arithmetic.
type Scope struct {
	OwnerID  string
	Now      time.Time
	Location *time.Location
}

func (sc Scope) now() time.Time {
	if sc.Location != nil {
		return sc.Now.In(sc.Location)
	}
	return sc.Now
}

// Today returns the scope's calendar date as YYYY-MM-DD.
func (sc Scope) Today() string {
	return utils.FormatDay(sc.now())
}

func (sc Scope) validate(op string) error {
	if strings.TrimSpace(sc.OwnerID) == "" {
		return apperrors.NewQueryError(op, "", apperrors.ErrMissingOwner)
	}
	if sc.Now.IsZero() {
		return apperrors.NewQueryError(op, sc.OwnerID, errMissingNow)
	}
	return nil
}

// Summary bundles every statistic for one owner.
type Summary struct {
	OwnerID     string               `json:"owner_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Streak      models.StreakSummary `json:"streak"`
	Monthly     models.MonthlyRate   `json:"monthly"`
	Heatmap     []models.HeatmapCell `json:"heatmap"`
	Period      Period               `json:"period"`
	Chart       []models.ChartPoint  `json:"chart"`
}

// Service runs owner-scoped read queries and reduces them in process.
// It never writes and never retries; store failures surface as QueryError.
type Service struct {
	source storage.StatsSource
}

func NewService(source storage.StatsSource) *Service {
	return &Service{source: source}
}

func (s *Service) observe(op string, sc Scope, start time.Time, err error) error {
	metrics.ObserveQuery(op, start, err)
	if err != nil {
		logger.Warn("Stats query failed", "op", op, "owner", sc.OwnerID, "error", err)
		return apperrors.NewQueryError(op, sc.OwnerID, err)
	}
	return nil
}

func (s *Service) completions(ctx context.Context, sc Scope, sinceDay string) ([]models.CompletionEvent, error) {
	if err := sc.validate(opCompletionDates); err != nil {
		return nil, err
	}
	start := time.Now()
	events, err := s.source.QueryCompletionDates(ctx, sc.OwnerID, sinceDay)
	if err == nil {
		for _, e := range events {
			if e.OwnerID != sc.OwnerID {
				err = fmt.Errorf("%w: completion %s", apperrors.ErrOwnerMismatch, e.ID)
				break
			}
		}
	}
	if err := s.observe(opCompletionDates, sc, start, err); err != nil {
		return nil, err
	}
	logger.Debug("Fetched completions", "owner", sc.OwnerID, "since", sinceDay, "rows", len(events))
	return events, nil
}

func (s *Service) workSessions(ctx context.Context, sc Scope, since time.Time) ([]models.FocusSession, error) {
	if err := sc.validate(opFocusSessions); err != nil {
		return nil, err
	}
	start := time.Now()
	sessions, err := s.source.QueryFocusSessions(ctx, sc.OwnerID, models.FocusModeWork, since)
	if err == nil {
		for _, fs := range sessions {
			if fs.OwnerID != sc.OwnerID {
				err = fmt.Errorf("%w: focus session %s", apperrors.ErrOwnerMismatch, fs.ID)
				break
			}
		}
	}
	if err := s.observe(opFocusSessions, sc, start, err); err != nil {
		return nil, err
	}
	logger.Debug("Fetched focus sessions", "owner", sc.OwnerID, "since", since, "rows", len(sessions))
	return sessions, nil
}

func (s *Service) habitCount(ctx context.Context, sc Scope) (int, error) {
	if err := sc.validate(opHabitCount); err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := s.source.QueryHabitCount(ctx, sc.OwnerID)
	if err := s.observe(opHabitCount, sc, start, err); err != nil {
		return 0, err
	}
	return n, nil
}

// Streak computes the current and longest daily streak over all of the
// owner's habits.
func (s *Service) Streak(ctx context.Context, sc Scope) (models.StreakSummary, error) {
	metrics.IncStatsRequest("streak")
	events, err := s.completions(ctx, sc, "")
	if err != nil {
		return models.StreakSummary{}, err
	}
	days, err := completionDays(events)
	if err != nil {
		return models.StreakSummary{}, apperrors.NewQueryError(opCompletionDates, sc.OwnerID, err)
	}
	return ComputeStreak(days, sc.now()), nil
}

// Heatmap returns window+1 daily cells ending today.
func (s *Service) Heatmap(ctx context.Context, sc Scope, window int) ([]models.HeatmapCell, error) {
	metrics.IncStatsRequest("heatmap")
	if window < 0 || window > constants.MaxHeatmapWindowDays {
		return nil, fmt.Errorf("heatmap window must be between 0 and %d days, got %d", constants.MaxHeatmapWindowDays, window)
	}
	now := sc.now()
	events, err := s.completions(ctx, sc, HeatmapStart(window, now))
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(CountByDay(events), window, now)
}

// Monthly returns this month's completion rate against active habits.
func (s *Service) Monthly(ctx context.Context, sc Scope) (models.MonthlyRate, error) {
	metrics.IncStatsRequest("monthly")
	now := sc.now()
	first, elapsed := MonthStart(now)
	events, err := s.completions(ctx, sc, first)
	if err != nil {
		return models.MonthlyRate{}, err
	}
	habits, err := s.habitCount(ctx, sc)
	if err != nil {
		return models.MonthlyRate{}, err
	}

	today := utils.FormatDay(now)
	completed := 0
	for _, e := range events {
		if e.Day <= today {
			completed++
		}
	}
	return MonthlyRate(completed, habits, elapsed), nil
}

// Chart sums work-session minutes per bucket of period. The result holds only
// populated buckets; see WithDefaultTemplate for display.
func (s *Service) Chart(ctx context.Context, sc Scope, period Period) ([]models.ChartPoint, error) {
	metrics.IncStatsRequest("chart")
	b, err := period.Buckets()
	if err != nil {
		return nil, err
	}
	now := sc.now()
	sessions, err := s.workSessions(ctx, sc, b.Since(now))
	if err != nil {
		return nil, err
	}
	return AggregateChart(sessions, period, now)
}

// Summary runs every aggregation in turn and stops at the first failure.
// The chart is template-filled.
func (s *Service) Summary(ctx context.Context, sc Scope, window int, period Period) (Summary, error) {
	streak, err := s.Streak(ctx, sc)
	if err != nil {
		return Summary{}, err
	}
	monthly, err := s.Monthly(ctx, sc)
	if err != nil {
		return Summary{}, err
	}
	heatmap, err := s.Heatmap(ctx, sc, window)
	if err != nil {
		return Summary{}, err
	}
	points, err := s.Chart(ctx, sc, period)
	if err != nil {
		return Summary{}, err
	}
	points, err = WithDefaultTemplate(points, period)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		OwnerID:     sc.OwnerID,
		GeneratedAt: sc.now(),
		Streak:      streak,
		Monthly:     monthly,
		Heatmap:     heatmap,
		Period:      period,
		Chart:       points,
	}, nil
}
