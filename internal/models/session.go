package models

import (
	"fmt"
	"time"
)

type FocusMode string

const (
	FocusModeWork  FocusMode = "work"
	FocusModeBreak FocusMode = "break"
)

// ParseFocusMode validates a mode name.
func ParseFocusMode(s string) (FocusMode, error) {
	switch FocusMode(s) {
	case FocusModeWork, FocusModeBreak:
		return FocusMode(s), nil
	default:
		return "", fmt.Errorf("invalid focus mode %q (expected work or break)", s)
	}
}

// FocusSession is one completed timer period. Only work sessions feed statistics.
type FocusSession struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	DurationMinutes int       `json:"duration_minutes"`
	Mode            FocusMode `json:"mode"`
	CompletedAt     time.Time `json:"completed_at"`
}

func (s FocusSession) Validate() error {
	if s.OwnerID == "" {
		return fmt.Errorf("focus session has no owner")
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("focus session duration must be positive, got %d", s.DurationMinutes)
	}
	if _, err := ParseFocusMode(string(s.Mode)); err != nil {
		return err
	}
	if s.CompletedAt.IsZero() {
		return fmt.Errorf("focus session has no completion time")
	}
	return nil
}
