package constants

import "time"

const (
	AppName            = "habitmaster"
	DefaultKeyringUser = "database-connection"
	// KeyringDatabase as the configured database reads the DSN from the keyring
	KeyringDatabase    = "keyring"
	DefaultConfigDir   = "~/.config/habitmaster"
	DefaultConfigFile  = "config.yaml"
	DefaultDBFile      = "habitmaster.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar date format used for completion days (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the time-of-day format used for display (HH:MM)
	TimeFormat = "15:04"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "HABITMASTER_"

	// Focus timer defaults
	DefaultWorkMinutes   = 25
	DefaultBreakMinutes  = 5
	FocusLockfileName    = "focus.lock"
	FocusTickInterval    = time.Second
	DefaultFocusListSize = 20

	// Statistics defaults
	DefaultHeatmapWindowDays = 90
	MaxHeatmapWindowDays     = 3660
	StatsQueryTimeout        = 15 * time.Second
	DefaultChartWidth        = 40
	DefaultTimezone          = "Local"

	// MaxBackups is the number of database snapshots kept
	MaxBackups = 14

	// HTTP API
	DefaultServerAddr    = ":8080"
	OwnerHeader          = "X-Owner-ID"
	ServerReadTimeout    = 10 * time.Second
	ServerWriteTimeout   = 30 * time.Second
	ServerRequestTimeout = 15 * time.Second
)
