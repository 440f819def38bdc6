package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

const habitColumns = "id, owner_id, name, created_at, archived_at, deleted_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	var archivedAt, deletedAt sql.NullString

	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &createdAt, &archivedAt, &deletedAt); err != nil {
		return models.Habit{}, err
	}

	var err error
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime(archivedAt, "archived_at"); err != nil {
		return models.Habit{}, err
	}
	if h.DeletedAt, err = parseNullTime(deletedAt, "deleted_at"); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

// UpdateHabit inserts or replaces the habit row keyed by id.
func (s *Store) UpdateHabit(habit models.Habit) error {
	if err := requireOwner(habit.OwnerID); err != nil {
		return err
	}
	if strings.TrimSpace(habit.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(s.q(`
		INSERT INTO habits (id, owner_id, name, created_at, archived_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`),
		habit.ID, habit.OwnerID, habit.Name, formatTime(habit.CreatedAt),
		formatNullTime(habit.ArchivedAt), formatNullTime(habit.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to save habit %q: %w", habit.Name, err)
	}
	return nil
}

func (s *Store) GetHabit(ownerID, id string) (models.Habit, error) {
	row := s.db.QueryRow(s.q(`
		SELECT `+habitColumns+`
		FROM habits WHERE owner_id = ? AND id = ? AND deleted_at IS NULL`), ownerID, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (s *Store) GetHabitByName(ownerID, name string) (models.Habit, error) {
	row := s.db.QueryRow(s.q(`
		SELECT `+habitColumns+`
		FROM habits WHERE owner_id = ? AND name = ? AND deleted_at IS NULL`), ownerID, name)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (s *Store) GetAllHabits(ownerID string, includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE owner_id = ?"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at, name"

	rows, err := s.db.Query(s.q(query), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) ArchiveHabit(ownerID, id string) error {
	res, err := s.db.Exec(s.q(`
		UPDATE habits SET archived_at = ?
		WHERE owner_id = ? AND id = ? AND archived_at IS NULL AND deleted_at IS NULL`),
		formatTime(time.Now()), ownerID, id)
	if err != nil {
		return err
	}
	return affectedOne(res, "habit not found or already archived")
}

func (s *Store) UnarchiveHabit(ownerID, id string) error {
	res, err := s.db.Exec(s.q(`
		UPDATE habits SET archived_at = NULL
		WHERE owner_id = ? AND id = ? AND archived_at IS NOT NULL AND deleted_at IS NULL`),
		ownerID, id)
	if err != nil {
		return err
	}
	return affectedOne(res, "habit not found or not archived")
}

// DeleteHabit soft-deletes; completions stay but stop counting.
func (s *Store) DeleteHabit(ownerID, id string) error {
	res, err := s.db.Exec(s.q(`
		UPDATE habits SET deleted_at = ?
		WHERE owner_id = ? AND id = ? AND deleted_at IS NULL`),
		formatTime(time.Now()), ownerID, id)
	if err != nil {
		return err
	}
	return affectedOne(res, "habit not found or already deleted")
}

func (s *Store) RestoreHabit(ownerID, id string) error {
	res, err := s.db.Exec(s.q(`
		UPDATE habits SET deleted_at = NULL
		WHERE owner_id = ? AND id = ? AND deleted_at IS NOT NULL`),
		ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to restore habit (is the name taken?): %w", err)
	}
	return affectedOne(res, "habit not found or not deleted")
}
