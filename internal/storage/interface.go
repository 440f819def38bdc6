package storage

import (
	"context"
	"errors"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

// ErrNotFound is returned when an owner-scoped lookup matches no row.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// SchemaVersion returns the applied and the latest embedded schema versions.
	SchemaVersion() (current, latest int, err error)

	// Habits
	AddHabit(models.Habit) error
	GetHabit(ownerID, id string) (models.Habit, error)
	GetHabitByName(ownerID, name string) (models.Habit, error)
	GetAllHabits(ownerID string, includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(ownerID, id string) error
	UnarchiveHabit(ownerID, id string) error
	DeleteHabit(ownerID, id string) error
	RestoreHabit(ownerID, id string) error

	// Completion events
	// MarkCompletion is an idempotent upsert on (owner, habit, day); created
	// is false when the event already existed.
	MarkCompletion(models.CompletionEvent) (created bool, err error)
	UnmarkCompletion(ownerID, habitID, day string) error
	GetCompletionsForDay(ownerID, day string) ([]models.CompletionEvent, error)
	GetCompletionsForHabit(ownerID, habitID, startDay, endDay string) ([]models.CompletionEvent, error)

	// Focus sessions
	AddFocusSession(models.FocusSession) error
	GetFocusSessions(ownerID string, since time.Time, limit int) ([]models.FocusSession, error)

	StatsSource

	// Utils
	GetConfigPath() string
}

// StatsSource is the read-only query surface the statistics service consumes.
// Every method filters by owner.
type StatsSource interface {
	QueryCompletionDates(ctx context.Context, ownerID, sinceDay string) ([]models.CompletionEvent, error)
	QueryFocusSessions(ctx context.Context, ownerID string, mode models.FocusMode, since time.Time) ([]models.FocusSession, error)
	QueryHabitCount(ctx context.Context, ownerID string) (int, error)
}
