package constants

import "time"

const (
	AppName            = "cadence"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/cadence"
	DefaultConfigPath  = "~/.config/cadence/cadence.db"
	DefaultConfigFile  = "~/.config/cadence/config.yaml"
	Version            = "v0.1.0"

	// KeyringStorage as a storage location or kv_url reads the value from
	// the OS keyring.
	KeyringStorage = "keyring"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is the format accepted for instants on the command line
	DateTimeFormat = "2006-01-02 15:04"

	// MaxOccurrences caps every expansion walk. It guards against runaway
	// rules and is not a feature limit.
	MaxOccurrences = 500

	// Cutoff used by the deadline classifier: 23:59 local time of the due date.
	CutoffHour   = 23
	CutoffMinute = 59

	// Key-value layout of habit completion records
	HabitKeyPrefix   = "habit:"
	HabitDaysSuffix  = ":days"
	HabitTimesSuffix = ":times"
	SettingKeyPrefix = "settings:"

	// Redis defaults
	RedisKeyPrefix  = "cadence:"
	RedisOpTimeout  = 2 * time.Second
	RedisDefaultURL = "redis://localhost:6379/0"
)
