package models

import "time"

// CompletionEvent records that a habit was done on a calendar day.
// At most one event exists per (OwnerID, HabitID, Day).
type CompletionEvent struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	HabitID    string    `json:"habit_id"`
	Day        string    `json:"day"` // YYYY-MM-DD
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
