package models

import "time"

// Habit is a recurring activity owned by a single user.
type Habit struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the habit counts toward the expected monthly total.
func (h Habit) Active() bool {
	return h.ArchivedAt == nil && h.DeletedAt == nil
}
