package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path and schema version."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump a habit and its completions as JSON."`
	DumpDay      *DebugDumpDayCmd      `cmd:"" help:"Dump the completions of one day as JSON."`
	DumpSessions *DebugDumpSessionsCmd `cmd:"" help:"Dump recent focus sessions as JSON."`
}

func dumpJSON(ctx *cli.Context, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]interface{}{
		"path": ctx.Store.GetConfigPath(),
	}
	if err := ctx.Store.Load(); err == nil {
		if current, latest, err := ctx.Store.SchemaVersion(); err == nil {
			output["schema_version"] = current
			output["latest_version"] = latest
		}
	}
	return dumpJSON(ctx, output)
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabit(owner, cmd.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}
	entries, err := ctx.Store.GetCompletionsForHabit(owner, habit.ID, "0000-01-01", "9999-12-31")
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	if entries == nil {
		entries = []models.CompletionEvent{}
	}

	return dumpJSON(ctx, struct {
		Habit       models.Habit             `json:"habit"`
		Completions []models.CompletionEvent `json:"completions"`
	}{habit, entries})
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Day to dump (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	date := cmd.Date
	if date == "today" {
		date = ""
	}
	day, err := ctx.ParseDay(date)
	if err != nil {
		return err
	}

	entries, err := ctx.Store.GetCompletionsForDay(owner, day)
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	if entries == nil {
		entries = []models.CompletionEvent{}
	}
	return dumpJSON(ctx, entries)
}

type DebugDumpSessionsCmd struct {
	Limit int `help:"Maximum number of sessions." default:"20"`
}

func (cmd *DebugDumpSessionsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	list, err := ctx.Store.GetFocusSessions(owner, time.Time{}, cmd.Limit)
	if err != nil {
		return fmt.Errorf("failed to get focus sessions: %w", err)
	}
	if list == nil {
		list = []models.FocusSession{}
	}
	return dumpJSON(ctx, list)
}
