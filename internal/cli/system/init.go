package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/config"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

type InitCmd struct {
	Force       bool   `help:"Force reset by deleting existing database before initialization."`
	Owner       string `help:"Owner id to use instead of generating one."`
	Timezone    string `help:"IANA timezone for day boundaries (e.g. Europe/Berlin)."`
	Interactive bool   `short:"i" help:"Prompt for settings."`
}

// promptSettings asks for the timezone and focus lengths. Replaced in tests.
var promptSettings = func(cfg *config.Config) error {
	work := fmt.Sprint(cfg.Focus.WorkMinutes)
	brk := fmt.Sprint(cfg.Focus.BreakMinutes)
	positive := func(s string) error {
		var n int
		if _, err := fmt.Sscan(s, &n); err != nil || n <= 0 {
			return errors.New("enter a positive number of minutes")
		}
		return nil
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Timezone").
				Description("IANA name, or Local").
				Value(&cfg.Timezone).
				Validate(func(s string) error {
					if !utils.ValidateTimezone(s) {
						return fmt.Errorf("unknown timezone %q", s)
					}
					return nil
				}),
			huh.NewInput().Title("Focus minutes").Value(&work).Validate(positive),
			huh.NewInput().Title("Break minutes").Value(&brk).Validate(positive),
		),
	).Run()
	if err != nil {
		return err
	}
	fmt.Sscan(work, &cfg.Focus.WorkMinutes)
	fmt.Sscan(brk, &cfg.Focus.BreakMinutes)
	return nil
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if ctx.Config == nil {
		cfg := config.Default(ctx.ConfigDir())
		ctx.Config = &cfg
	}
	cfg := ctx.Config

	if c.Force {
		if cfg.IsPostgres() {
			return errors.New("--force is only supported for SQLite storage")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release the file handle
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if c.Timezone != "" {
		if !utils.ValidateTimezone(c.Timezone) {
			return fmt.Errorf("unknown timezone %q", c.Timezone)
		}
		cfg.Timezone = c.Timezone
	}
	if c.Interactive {
		if err := promptSettings(cfg); err != nil {
			return err
		}
	}

	switch owner := strings.TrimSpace(c.Owner); {
	case owner != "":
		cfg.OwnerID = owner
	case cfg.OwnerID == "":
		cfg.OwnerID = uuid.New().String()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	if err := cfg.Save(ctx.ConfigPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())
	ctx.Printf("Owner id: %s\n", cfg.OwnerID)
	ctx.Printf("Config written to: %s\n", ctx.ConfigPath)
	return nil
}
