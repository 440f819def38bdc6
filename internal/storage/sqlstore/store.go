// Package sqlstore holds the queries shared by the sqlite and postgres backends.
// Queries are written with ? placeholders and rebound per dialect.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/migration"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/migrations"
)

type Dialect struct {
	Driver migration.Driver
	// Numbered switches ? placeholders to $1, $2, ...
	Numbered bool
}

var (
	SQLite   = Dialect{Driver: migration.DriverSQLite}
	Postgres = Dialect{Driver: migration.DriverPostgres, Numbered: true}
)

// Rebind rewrites ? placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store implements every storage.Provider query on top of a *sql.DB.
// Backends embed it and own opening and closing the connection.
type Store struct {
	dialect Dialect
	db      *sql.DB
}

func New(d Dialect) *Store {
	return &Store{dialect: d}
}

// Attach sets the connection used by all queries.
func (s *Store) Attach(db *sql.DB) {
	s.db = db
}

// GetDB returns the underlying connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, string(s.dialect.Driver))
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect.Driver, err)
	}
	return migration.NewRunner(s.db, subFS, s.dialect.Driver), nil
}

// Migrate applies pending embedded migrations.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	return r.ApplyMigrations(logFn)
}

// ValidateSchema fails when the database is newer than the embedded migrations.
func (s *Store) ValidateSchema() error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	return r.ValidateVersion()
}

func (s *Store) SchemaVersion() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, fmt.Errorf("storage not loaded")
	}
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	return r.Status()
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString, field string) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return &t, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("owner id is required")
	}
	return nil
}

// affectedOne maps a zero-row update to storage.ErrNotFound.
func affectedOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
