package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

// Config is the on-disk configuration, overridable from the environment.
type Config struct {
	OwnerID           string       `yaml:"owner_id"`
	Database          string       `yaml:"database"`
	Timezone          string       `yaml:"timezone"`
	HeatmapWindowDays int          `yaml:"heatmap_window_days"`
	Focus             FocusConfig  `yaml:"focus"`
	Server            ServerConfig `yaml:"server"`
	Debug             bool         `yaml:"debug"`
}

type FocusConfig struct {
	WorkMinutes  int `yaml:"work_minutes"`
	BreakMinutes int `yaml:"break_minutes"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file exists yet.
func Default(configDir string) Config {
	return Config{
		Database:          filepath.Join(configDir, constants.DefaultDBFile),
		Timezone:          constants.DefaultTimezone,
		HeatmapWindowDays: constants.DefaultHeatmapWindowDays,
		Focus: FocusConfig{
			WorkMinutes:  constants.DefaultWorkMinutes,
			BreakMinutes: constants.DefaultBreakMinutes,
		},
		Server: ServerConfig{Addr: constants.DefaultServerAddr},
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Load reads path (a missing file yields defaults), applies .env and
// HABITMASTER_* overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(constants.EnvPrefix + "OWNER_ID"); v != "" {
		cfg.OwnerID = v
	}
	if v := os.Getenv(constants.EnvPrefix + "DB_CONNECTION"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(constants.EnvPrefix + "TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv(constants.EnvPrefix + "SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(constants.EnvPrefix + "HEATMAP_WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sHEATMAP_WINDOW_DAYS %q: %w", constants.EnvPrefix, v, err)
		}
		cfg.HeatmapWindowDays = n
	}
	return nil
}

// Validate checks value ranges. The owner id may be empty before init.
func (c *Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	if c.HeatmapWindowDays < 0 || c.HeatmapWindowDays > constants.MaxHeatmapWindowDays {
		return fmt.Errorf("heatmap_window_days must be between 0 and %d, got %d", constants.MaxHeatmapWindowDays, c.HeatmapWindowDays)
	}
	if c.Focus.WorkMinutes <= 0 {
		return fmt.Errorf("focus.work_minutes must be positive, got %d", c.Focus.WorkMinutes)
	}
	if c.Focus.BreakMinutes <= 0 {
		return fmt.Errorf("focus.break_minutes must be positive, got %d", c.Focus.BreakMinutes)
	}
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database must not be empty")
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// IsPostgres reports whether Database is a Postgres connection string or
// defers to the keyring.
func (c *Config) IsPostgres() bool {
	return c.UsesKeyring() || IsPostgresDSN(c.Database)
}

// UsesKeyring reports whether the connection string lives in the OS keyring.
func (c *Config) UsesKeyring() bool {
	return c.Database == constants.KeyringDatabase
}

// IsPostgresDSN matches the URL forms lib/pq accepts.
func IsPostgresDSN(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}
