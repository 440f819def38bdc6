// Package backup snapshots and restores the local SQLite database.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/logger"
)

const (
	DirName        = "backups"
	filePrefix     = constants.AppName + "-"
	fileSuffix     = ".db"
	stampLayout    = "20060102-150405"
	maxNameRetries = 100
)

var ErrNoDatabase = errors.New("database does not exist")

type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager keeps at most Keep snapshots next to the database file.
type Manager struct {
	dbPath    string
	backupDir string
	Keep      int

	// now is replaced in tests.
	now func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), DirName),
		Keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

func (m *Manager) Create() (string, error) {
	path, err := m.snapshot()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(stampLayout)
	path := filepath.Join(m.backupDir, filePrefix+stamp+fileSuffix)
	for i := 1; i <= maxNameRetries; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, i, fileSuffix))
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func (m *Manager) snapshot() (string, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	dest, err := m.nextPath()
	if err != nil {
		return "", err
	}

	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	if err := verify(src); err != nil {
		return "", fmt.Errorf("database appears to be corrupted: %w", err)
	}
	// VACUUM INTO writes a consistent copy even while other readers are open
	if _, err := src.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		if err := copyFile(m.dbPath, dest); err != nil {
			return "", fmt.Errorf("failed to backup database: %w", err)
		}
	}
	logger.Info("Backup created", "path", dest)
	return dest, nil
}

// parseName extracts the timestamp from a backup filename, ignoring a
// trailing -N counter.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(stamp) > len(stampLayout) {
		stamp = stamp[:len(stampLayout)]
	}
	t, err := time.Parse(stampLayout, stamp)
	return t, err == nil
}

// List returns the snapshots, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	list := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		list = append(list, Info{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      fi.Size(),
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Path > list[j].Path
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

func (m *Manager) rotate() error {
	list, err := m.List()
	if err != nil {
		return err
	}
	for i := m.Keep; i < len(list); i++ {
		if err := os.Remove(list[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", list[i].Path, err)
		}
	}
	return nil
}

// Resolve finds a backup given an absolute path, a path relative to the
// working directory, or a bare filename inside the backup directory.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	candidate := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", m.backupDir)
}

// Restore replaces the database with path. The current database is
// snapshotted first and that snapshot's path is returned ("" when there was
// no database). The caller must close its connections beforehand.
func (m *Manager) Restore(path string) (string, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("backup file is invalid: %w", err)
	}
	err = verify(db)
	db.Close()
	if err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous string
	if _, err := os.Stat(m.dbPath); err == nil {
		if previous, err = m.snapshot(); err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return "", fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Database restored", "from", path)
	return previous, nil
}

// verify requires a readable schema_version table.
func verify(db *sql.DB) error {
	var version int
	return db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
