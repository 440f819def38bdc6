package system

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/focus"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/keyring"
)

// dbProvider exposes the connection of the SQL backends.
type dbProvider interface {
	GetDB() *sql.DB
}

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// warnOnly failures do not fail the command.
	warnOnly bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Completion integrity", needsDB: true, run: checkCompletionIntegrity},
	{name: "Date formats", needsDB: true, run: checkDateFormats},
	{name: "Keyring", warnOnly: true, run: checkKeyring},
	{name: "Focus timer", warnOnly: true, run: checkFocusLock},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	if ctx.Config == nil {
		return errors.New("no configuration loaded")
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := ctx.OwnerID(); err != nil {
		return err
	}
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	p, ok := ctx.Store.(dbProvider)
	if !ok {
		return nil
	}
	db := p.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now, err := ctx.Clock()
	if err != nil {
		return err
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// checkCompletionIntegrity finds completions whose habit is missing or
// belongs to another owner.
func checkCompletionIntegrity(ctx *cli.Context) error {
	p, ok := ctx.Store.(dbProvider)
	if !ok {
		return nil
	}
	db := p.GetDB()

	var orphaned int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM completion_events c
		LEFT JOIN habits h ON c.habit_id = h.id
		WHERE h.id IS NULL`).Scan(&orphaned)
	if err != nil {
		return fmt.Errorf("failed to check orphaned completions: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d completions referencing non-existent habits", orphaned)
	}

	var foreign int
	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM completion_events c
		JOIN habits h ON c.habit_id = h.id
		WHERE c.owner_id <> h.owner_id`).Scan(&foreign)
	if err != nil {
		return fmt.Errorf("failed to check completion owners: %w", err)
	}
	if foreign > 0 {
		return fmt.Errorf("found %d completions whose owner differs from their habit's owner", foreign)
	}
	return nil
}

func checkDateFormats(ctx *cli.Context) error {
	p, ok := ctx.Store.(dbProvider)
	if !ok {
		return nil
	}
	var invalid int
	err := p.GetDB().QueryRow(`
		SELECT COUNT(*)
		FROM completion_events
		WHERE day NOT LIKE '____-__-__'`).Scan(&invalid)
	if err != nil {
		return fmt.Errorf("failed to check completion dates: %w", err)
	}
	if invalid > 0 {
		return fmt.Errorf("found %d completions with invalid day format (expected YYYY-MM-DD)", invalid)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if ctx.Config == nil || !ctx.Config.IsPostgres() {
		return nil
	}
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; use .pgpass or environment variables")
	}
	return nil
}

func checkFocusLock(ctx *cli.Context) error {
	if info, running := focus.Status(focus.LockPath(ctx.ConfigDir())); running {
		return fmt.Errorf("focus timer running since %s (pid %d)", info.StartedAt.Local().Format(time.RFC3339), info.PID)
	}
	return nil
}
