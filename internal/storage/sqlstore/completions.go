package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

const completionColumns = "c.id, c.owner_id, c.habit_id, c.day, c.note, c.recorded_at"

func scanCompletion(row rowScanner) (models.CompletionEvent, error) {
	var e models.CompletionEvent
	var recordedAt string
	if err := row.Scan(&e.ID, &e.OwnerID, &e.HabitID, &e.Day, &e.Note, &recordedAt); err != nil {
		return models.CompletionEvent{}, err
	}
	t, err := time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return models.CompletionEvent{}, fmt.Errorf("failed to parse recorded_at for completion %s: %w", e.ID, err)
	}
	e.RecordedAt = t
	return e, nil
}

func collectCompletions(rows *sql.Rows) ([]models.CompletionEvent, error) {
	defer rows.Close()
	var events []models.CompletionEvent
	for rows.Next() {
		e, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkCompletion inserts the event unless one already exists for the same
// owner, habit and day.
func (s *Store) MarkCompletion(e models.CompletionEvent) (bool, error) {
	if err := requireOwner(e.OwnerID); err != nil {
		return false, err
	}
	if _, err := utils.ParseDay(e.Day); err != nil {
		return false, err
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	res, err := s.db.Exec(s.q(`
		INSERT INTO completion_events (id, owner_id, habit_id, day, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, habit_id, day) DO NOTHING`),
		e.ID, e.OwnerID, e.HabitID, e.Day, e.Note, formatTime(e.RecordedAt))
	if err != nil {
		return false, fmt.Errorf("failed to record completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UnmarkCompletion(ownerID, habitID, day string) error {
	res, err := s.db.Exec(s.q(`
		DELETE FROM completion_events WHERE owner_id = ? AND habit_id = ? AND day = ?`),
		ownerID, habitID, day)
	if err != nil {
		return err
	}
	return affectedOne(res, "no completion recorded for "+day)
}

func (s *Store) GetCompletionsForDay(ownerID, day string) ([]models.CompletionEvent, error) {
	rows, err := s.db.Query(s.q(`
		SELECT `+completionColumns+`
		FROM completion_events c
		WHERE c.owner_id = ? AND c.day = ?
		ORDER BY c.recorded_at`), ownerID, day)
	if err != nil {
		return nil, err
	}
	return collectCompletions(rows)
}

// GetCompletionsForHabit returns events with startDay <= day <= endDay, newest first.
func (s *Store) GetCompletionsForHabit(ownerID, habitID, startDay, endDay string) ([]models.CompletionEvent, error) {
	rows, err := s.db.Query(s.q(`
		SELECT `+completionColumns+`
		FROM completion_events c
		WHERE c.owner_id = ? AND c.habit_id = ? AND c.day >= ? AND c.day <= ?
		ORDER BY c.day DESC`), ownerID, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	return collectCompletions(rows)
}

// QueryCompletionDates returns the owner's completions on or after sinceDay.
// An empty sinceDay returns full history. Events of deleted habits are excluded.
func (s *Store) QueryCompletionDates(ctx context.Context, ownerID, sinceDay string) ([]models.CompletionEvent, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+completionColumns+`
		FROM completion_events c
		JOIN habits h ON h.id = c.habit_id AND h.owner_id = c.owner_id
		WHERE c.owner_id = ? AND h.deleted_at IS NULL AND c.day >= ?
		ORDER BY c.day DESC`), ownerID, sinceDay)
	if err != nil {
		return nil, err
	}
	return collectCompletions(rows)
}

// QueryHabitCount counts habits that are neither archived nor deleted.
func (s *Store) QueryHabitCount(ctx context.Context, ownerID string) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT COUNT(*) FROM habits
		WHERE owner_id = ? AND archived_at IS NULL AND deleted_at IS NULL`), ownerID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
