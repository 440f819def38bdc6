package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli/backups"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli/habits"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli/reports"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli/sessions"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli/system"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/config"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	apperrors "github.com/zsy-dream/HabitMaster-pioneer/internal/errors"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/keyring"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/logger"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage/postgres"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to the YAML config file." type:"string" default:"${config_path}"`
	Verbose bool   `help:"Log debug output to stderr." short:"v"`

	Init    system.InitCmd    `cmd:"" help:"Initialize storage and the local owner."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Serve statistics over HTTP."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Debug   system.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
	Backup  backups.BackupCmd `cmd:"" help:"Manage local database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show keyring availability."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Habit habits.HabitCmd   `cmd:"" help:"Manage habits and completions."`
	Focus sessions.FocusCmd `cmd:"" help:"Run and record Pomodoro focus sessions."`
	Stats reports.StatsCmd  `cmd:"" help:"Show streak, heatmap, monthly rate and focus charts."`
}

// openStore picks the backend named by the configured database.
func openStore(cfg *config.Config) (storage.Provider, error) {
	if !cfg.IsPostgres() {
		path, err := config.ExpandPath(cfg.Database)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}

	dsn := cfg.Database
	if cfg.UsesKeyring() {
		// the keyring is the one place a password may live
		resolved, err := keyring.Resolve("")
		if err != nil {
			return nil, fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		if resolved == "" {
			return nil, fmt.Errorf("no connection string in the keyring, run '%s keyring set' first", constants.AppName)
		}
		return postgres.New(resolved), nil
	}

	if _, err := postgres.ValidateConnString(dsn); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("%w; store it with '%s keyring set' and set database: %s, or use .pgpass",
				err, constants.AppName, constants.KeyringDatabase)
		}
		return nil, err
	}
	return postgres.New(dsn), nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracking and focus statistics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigDir + "/" + constants.DefaultConfigFile,
		},
	)

	configPath, err := config.ExpandPath(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		apperrors.Fatal(err)
	}

	logCfg := logger.Config{Debug: CLI.Verbose || cfg.Debug, ConfigDir: filepath.Dir(configPath)}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "config", configPath)

	appCtx := &cli.Context{
		Config:     cfg,
		ConfigPath: configPath,
	}

	// keyring commands must work before a connection string exists
	if !strings.HasPrefix(ctx.Command(), "keyring") {
		store, err := openStore(cfg)
		if err != nil {
			apperrors.Fatal(err)
		}
		appCtx.Store = store
	}

	// Commands load the store themselves; init and migrate must reach a
	// database whose schema does not validate yet.
	err = ctx.Run(appCtx)
	if appCtx.Store != nil {
		appCtx.Store.Close()
	}
	apperrors.Fatal(err)
}
