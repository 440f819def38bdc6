package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage/sqlstore"
)

type Store struct {
	*sqlstore.Store
	path string
	// Quiet suppresses migration progress output.
	Quiet bool
}

func NewStore(path string) *Store {
	return &Store{
		Store: sqlstore.New(sqlstore.SQLite),
		path:  path,
	}
}

func (s *Store) open() error {
	// foreign keys and busy_timeout are per connection, so set them in the DSN
	dsn := s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.Attach(db)
	return nil
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.GetDB() == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(s.logFn()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.GetDB() != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	if err := s.open(); err != nil {
		return err
	}

	// Validate schema version using embedded migrations
	return s.ValidateSchema()
}

func (s *Store) logFn() func(string) {
	if s.Quiet {
		return nil
	}
	return func(msg string) { fmt.Println(msg) }
}

func (s *Store) GetConfigPath() string {
	return s.path
}
