package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

func scanSession(row rowScanner) (models.FocusSession, error) {
	var fs models.FocusSession
	var mode, completedAt string
	if err := row.Scan(&fs.ID, &fs.OwnerID, &fs.DurationMinutes, &mode, &completedAt); err != nil {
		return models.FocusSession{}, err
	}
	fs.Mode = models.FocusMode(mode)
	t, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return models.FocusSession{}, fmt.Errorf("failed to parse completed_at for session %s: %w", fs.ID, err)
	}
	fs.CompletedAt = t
	return fs, nil
}

func collectSessions(rows *sql.Rows) ([]models.FocusSession, error) {
	defer rows.Close()
	var sessions []models.FocusSession
	for rows.Next() {
		fs, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, fs)
	}
	return sessions, rows.Err()
}

func (s *Store) AddFocusSession(fs models.FocusSession) error {
	if err := fs.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(s.q(`
		INSERT INTO focus_sessions (id, owner_id, duration_min, mode, completed_at)
		VALUES (?, ?, ?, ?, ?)`),
		fs.ID, fs.OwnerID, fs.DurationMinutes, string(fs.Mode), formatTime(fs.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to save focus session: %w", err)
	}
	return nil
}

// GetFocusSessions lists sessions of every mode completed at or after since,
// newest first. limit <= 0 means no limit.
func (s *Store) GetFocusSessions(ownerID string, since time.Time, limit int) ([]models.FocusSession, error) {
	query := `
		SELECT id, owner_id, duration_min, mode, completed_at
		FROM focus_sessions
		WHERE owner_id = ? AND completed_at >= ?
		ORDER BY completed_at DESC`
	args := []any{ownerID, formatTime(since)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// QueryFocusSessions returns the owner's sessions of one mode completed at or after since.
func (s *Store) QueryFocusSessions(ctx context.Context, ownerID string, mode models.FocusMode, since time.Time) ([]models.FocusSession, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, owner_id, duration_min, mode, completed_at
		FROM focus_sessions
		WHERE owner_id = ? AND mode = ? AND completed_at >= ?
		ORDER BY completed_at`), ownerID, string(mode), formatTime(since))
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}
