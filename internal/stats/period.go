package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

// Period is the chart granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists every supported period in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if _, err := p.Buckets(); err != nil {
		return "", err
	}
	return p, nil
}

// Bucketer supplies the lower bound, bucket key and canonical labels for one period.
type Bucketer interface {
	// Since returns the earliest instant included for the period ending at now.
	Since(now time.Time) time.Time
	// Key maps a timestamp, already in the reference location, to its bucket label.
	Key(t time.Time) string
	// Labels returns every bucket label in chronological order.
	Labels() []string
}

func (p Period) Buckets() (Bucketer, error) {
	switch p {
	case PeriodDay:
		return hourBuckets{}, nil
	case PeriodWeek:
		return weekdayBuckets{}, nil
	case PeriodMonth:
		return weekOfMonthBuckets{}, nil
	case PeriodYear:
		return quarterBuckets{}, nil
	default:
		return nil, fmt.Errorf("invalid period %q (expected day, week, month or year)", string(p))
	}
}

func (p Period) String() string { return string(p) }

// hourBuckets groups today's sessions by hour of day.
type hourBuckets struct{}

func (hourBuckets) Since(now time.Time) time.Time { return utils.StartOfDay(now) }

func (hourBuckets) Key(t time.Time) string { return fmt.Sprintf("%02d:00", t.Hour()) }

func (hourBuckets) Labels() []string {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%02d:00", h)
	}
	return labels
}

// weekdayBuckets covers the trailing seven calendar days, today included.
type weekdayBuckets struct{}

func (weekdayBuckets) Since(now time.Time) time.Time {
	return utils.AddDays(utils.StartOfDay(now), -6)
}

func (weekdayBuckets) Key(t time.Time) string { return t.Weekday().String()[:3] }

func (weekdayBuckets) Labels() []string {
	return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
}

// weekOfMonthBuckets covers the current month; days 1-7 are W1, 8-14 W2 and so on.
type weekOfMonthBuckets struct{}

func (weekOfMonthBuckets) Since(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func (weekOfMonthBuckets) Key(t time.Time) string { return fmt.Sprintf("W%d", (t.Day()+6)/7) }

func (weekOfMonthBuckets) Labels() []string { return []string{"W1", "W2", "W3", "W4", "W5"} }

// quarterBuckets covers the current calendar year.
type quarterBuckets struct{}

func (quarterBuckets) Since(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

func (quarterBuckets) Key(t time.Time) string { return fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1) }

func (quarterBuckets) Labels() []string { return []string{"Q1", "Q2", "Q3", "Q4"} }
