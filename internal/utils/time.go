package utils

import (
	"fmt"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
)

const day = 24 * time.Hour

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// CivilDay strips the time of day from t, keeping t's own calendar date.
// The result is midnight UTC so that day arithmetic never crosses a DST shift.
func CivilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(CivilDay(b).Sub(CivilDay(a)) / day)
}

// ParseDay parses a YYYY-MM-DD string into a civil day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDay renders the calendar date of t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays shifts t by n calendar days, keeping wall-clock midnight in t's location.
func AddDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ParseTimestampInLocation accepts RFC3339 or "YYYY-MM-DD HH:MM" (interpreted in loc).
func ParseTimestampInLocation(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(constants.DateFormat+" "+constants.TimeFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (expected RFC3339 or YYYY-MM-DD HH:MM)", s)
	}
	return t, nil
}
