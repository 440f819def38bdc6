package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/config"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	apperrors "github.com/zsy-dream/HabitMaster-pioneer/internal/errors"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

type Context struct {
	Store      storage.Provider
	Config     *config.Config
	ConfigPath string

	// Now is the command clock, time.Now when nil.
	Now func() time.Time
	// Out receives command output, os.Stdout when nil.
	Out io.Writer

	service *stats.Service
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Stdout(), args...)
}

func (c *Context) ConfigDir() string {
	return filepath.Dir(c.ConfigPath)
}

func (c *Context) Location() (*time.Location, error) {
	if c.Config == nil {
		return time.Local, nil
	}
	return c.Config.Location()
}

// Clock returns the current time in the configured timezone.
func (c *Context) Clock() (time.Time, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return now().In(loc), nil
}

// Today returns the configured timezone's calendar date.
func (c *Context) Today() (string, error) {
	now, err := c.Clock()
	if err != nil {
		return "", err
	}
	return utils.FormatDay(now), nil
}

// OwnerID returns the local owner created by init.
func (c *Context) OwnerID() (string, error) {
	if c.Config == nil || strings.TrimSpace(c.Config.OwnerID) == "" {
		return "", fmt.Errorf("%w, run '%s init' first", apperrors.ErrMissingOwner, constants.AppName)
	}
	return c.Config.OwnerID, nil
}

// Scope builds the statistics scope for the local owner.
func (c *Context) Scope() (stats.Scope, error) {
	owner, err := c.OwnerID()
	if err != nil {
		return stats.Scope{}, err
	}
	now, err := c.Clock()
	if err != nil {
		return stats.Scope{}, err
	}
	return stats.Scope{OwnerID: owner, Now: now, Location: now.Location()}, nil
}

func (c *Context) Stats() *stats.Service {
	if c.service == nil {
		c.service = stats.NewService(c.Store)
	}
	return c.service
}

// HeatmapWindow is the configured default heatmap window in days.
func (c *Context) HeatmapWindow() int {
	if c.Config == nil || c.Config.HeatmapWindowDays <= 0 {
		return constants.DefaultHeatmapWindowDays
	}
	return c.Config.HeatmapWindowDays
}

// FindHabit looks up a live habit of owner by name.
func (c *Context) FindHabit(owner, name string) (models.Habit, error) {
	h, err := c.Store.GetHabitByName(owner, name)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("habit %q not found", name)
	}
	return h, err
}

// ParseDay validates a YYYY-MM-DD argument, defaulting to today. Future days
// are rejected.
func (c *Context) ParseDay(day string) (string, error) {
	today, err := c.Today()
	if err != nil {
		return "", err
	}
	if day == "" {
		return today, nil
	}
	if _, err := utils.ParseDay(day); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	if day > today {
		return "", fmt.Errorf("cannot record %s, it is in the future", day)
	}
	return day, nil
}
