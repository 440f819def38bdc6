package sessions

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/focus"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/logger"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/metrics"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

type FocusCmd struct {
	Start  FocusStartCmd  `cmd:"" help:"Run a Pomodoro focus timer." default:"1"`
	Log    FocusLogCmd    `cmd:"" help:"Record a focus session manually."`
	List   FocusListCmd   `cmd:"" help:"List recent focus sessions."`
	Status FocusStatusCmd `cmd:"" help:"Show whether a focus timer is running."`
}

// runProgram drives the timer UI. Replaced in tests.
var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

type FocusStartCmd struct {
	Work   int `help:"Work period in minutes (default from config)."`
	Break  int `help:"Break period in minutes (default from config)."`
	Cycles int `help:"Stop after this many work periods (0 runs until quit)." default:"0"`
}

func (c *FocusStartCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	if c.Work < 0 || c.Break < 0 || c.Cycles < 0 {
		return errors.New("work, break and cycles must not be negative")
	}
	now, err := ctx.Clock()
	if err != nil {
		return err
	}

	lock, err := focus.Acquire(focus.LockPath(ctx.ConfigDir()), now)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release focus lock", "error", err)
		}
	}()

	cfg := focus.Config{OwnerID: owner, WorkMinutes: c.Work, BreakMinutes: c.Break, Cycles: c.Cycles}
	if ctx.Config != nil {
		if cfg.WorkMinutes == 0 {
			cfg.WorkMinutes = ctx.Config.Focus.WorkMinutes
		}
		if cfg.BreakMinutes == 0 {
			cfg.BreakMinutes = ctx.Config.Focus.BreakMinutes
		}
	}

	timer := focus.NewTimer(cfg)
	timer.OnComplete = func(s models.FocusSession) error {
		return record(ctx, s)
	}

	final, err := runProgram(timer)
	if err != nil {
		return fmt.Errorf("focus timer failed: %w", err)
	}

	var completed []models.FocusSession
	if m, ok := final.(focus.Model); ok {
		completed = m.Completed()
	}
	work, minutes := 0, 0
	for _, s := range completed {
		if s.Mode == models.FocusModeWork {
			work++
			minutes += s.DurationMinutes
		}
	}
	ctx.Printf("Completed %d work period(s), %d focus minute(s).\n", work, minutes)
	return nil
}

func record(ctx *cli.Context, s models.FocusSession) error {
	if err := ctx.Store.AddFocusSession(s); err != nil {
		return err
	}
	metrics.AddFocusMinutes(string(s.Mode), s.DurationMinutes)
	logger.Info("Recorded focus session", "mode", s.Mode, "minutes", s.DurationMinutes)
	return nil
}

type FocusLogCmd struct {
	Minutes int    `required:"" help:"Session length in minutes."`
	Mode    string `help:"Session mode (work or break)." default:"work" enum:"work,break"`
	At      string `help:"Completion time, RFC3339 or 'YYYY-MM-DD HH:MM' (default: now)."`
}

func (c *FocusLogCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	mode, err := models.ParseFocusMode(c.Mode)
	if err != nil {
		return err
	}
	now, err := ctx.Clock()
	if err != nil {
		return err
	}

	at := now
	if c.At != "" {
		if at, err = utils.ParseTimestampInLocation(c.At, now.Location()); err != nil {
			return err
		}
		if at.After(now) {
			return fmt.Errorf("cannot record a session completing in the future (%s)", c.At)
		}
	}

	s := models.FocusSession{
		ID:              uuid.New().String(),
		OwnerID:         owner,
		DurationMinutes: c.Minutes,
		Mode:            mode,
		CompletedAt:     at,
	}
	if err := record(ctx, s); err != nil {
		return err
	}
	ctx.Printf("Logged %d minute %s session at %s\n", s.DurationMinutes, s.Mode, at.In(now.Location()).Format(constants.DateFormat+" "+constants.TimeFormat))
	return nil
}

type FocusListCmd struct {
	Days  int `help:"Only show sessions from the last N days (0 for all)." default:"7"`
	Limit int `help:"Maximum number of sessions to show." default:"20"`
}

func (c *FocusListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	now, err := ctx.Clock()
	if err != nil {
		return err
	}

	var since time.Time
	if c.Days > 0 {
		since = utils.AddDays(utils.StartOfDay(now), -(c.Days - 1))
	}
	limit := c.Limit
	if limit <= 0 {
		limit = constants.DefaultFocusListSize
	}

	list, err := ctx.Store.GetFocusSessions(owner, since, limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println("No focus sessions found.")
		return nil
	}

	total := 0
	for _, s := range list {
		ctx.Printf("%s  %-5s  %3dm\n", s.CompletedAt.In(now.Location()).Format(constants.DateFormat+" "+constants.TimeFormat), s.Mode, s.DurationMinutes)
		if s.Mode == models.FocusModeWork {
			total += s.DurationMinutes
		}
	}
	ctx.Printf("\nFocus minutes shown: %d\n", total)
	return nil
}

type FocusStatusCmd struct{}

func (c *FocusStatusCmd) Run(ctx *cli.Context) error {
	info, running := focus.Status(focus.LockPath(ctx.ConfigDir()))
	if !running {
		ctx.Println("No focus timer running.")
		return nil
	}
	ctx.Printf("Focus timer running (pid %d, started %s)\n", info.PID, info.StartedAt.Local().Format(constants.TimeFormat))
	return nil
}
