package focus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid

	// ErrTimerRunning is returned when another live process holds the focus lock.
	ErrTimerRunning = errors.New("a focus timer is already running")
)

// LockInfo is the content of the focus lockfile.
type LockInfo struct {
	PID       int
	StartedAt time.Time
}

// Lock guards against two focus timers recording sessions at once.
type Lock struct {
	path string
	info LockInfo
}

// LockPath returns the lockfile location inside configDir.
func LockPath(configDir string) string {
	return filepath.Join(configDir, constants.FocusLockfileName)
}

// Acquire takes the lockfile at path. A malformed lockfile or one left
// behind by a dead process is replaced.
func Acquire(path string, now time.Time) (*Lock, error) {
	info, err := readLock(path)
	if err == nil && alive(info.PID) {
		return nil, fmt.Errorf("%w (pid %d, started %s)", ErrTimerRunning, info.PID, info.StartedAt.Local().Format(constants.TimeFormat))
	}
	if err == nil || !os.IsNotExist(err) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	info = LockInfo{PID: getpidFunc(), StartedAt: now.UTC().Truncate(time.Second)}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrTimerRunning
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d|%s", info.PID, info.StartedAt.Format(time.RFC3339)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path, info: info}, nil
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	info, err := readLock(l.path)
	if err != nil {
		return nil
	}
	if info.PID != l.info.PID {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *Lock) Info() LockInfo { return l.info }

// Status reports the live timer holding the lock, if any.
func Status(path string) (LockInfo, bool) {
	info, err := readLock(path)
	if err != nil || !alive(info.PID) {
		return LockInfo{}, false
	}
	return info, true
}

func readLock(path string) (LockInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return LockInfo{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return LockInfo{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return LockInfo{}, errors.New("invalid process ID in lockfile")
	}
	startedAt, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return LockInfo{}, errors.New("invalid start time in lockfile")
	}
	return LockInfo{PID: pid, StartedAt: startedAt}, nil
}

// alive reports whether pid is a running habitmaster process.
func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(filepath.Base(process.Executable()), constants.AppName)
}
