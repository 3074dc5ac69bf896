// Package config resolves runtime settings from an optional YAML file and
// CADENCE_* environment variables. Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

// Backend selects the catalog implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendJSON     Backend = "json"
)

// Config holds application configuration
type Config struct {
	// Storage is a file path (SQLite or JSON) or a PostgreSQL connection
	// string without a password.
	Storage string `yaml:"storage"`
	// Backend overrides detection from Storage.
	Backend Backend `yaml:"backend"`
	// KVURL moves completion records and settings to a separate key-value
	// store: "redis://...", "memory://" or "keyring" for a Redis URL kept in
	// the OS keyring. Empty keeps them in the catalog.
	KVURL    string `yaml:"kv_url"`
	Timezone string `yaml:"timezone"`
	Debug    bool   `yaml:"debug"`
	LogDir   string `yaml:"log_dir"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Storage: constants.DefaultConfigPath,
	}
}

// Load reads the YAML file at path, when it exists, over the defaults and
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage = getEnv("CADENCE_STORAGE", c.Storage)
	c.Backend = Backend(getEnv("CADENCE_BACKEND", string(c.Backend)))
	c.KVURL = getEnv("CADENCE_KV_URL", c.KVURL)
	c.Timezone = getEnv("CADENCE_TIMEZONE", c.Timezone)
	c.Debug = getEnvBool("CADENCE_DEBUG", c.Debug)
	c.LogDir = getEnv("CADENCE_LOG_DIR", c.LogDir)
}

// Validate checks field values that can be checked without touching
// storage.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage) == "" {
		return fmt.Errorf("storage location is required")
	}
	switch c.Backend {
	case "", BackendSQLite, BackendPostgres, BackendJSON:
	default:
		return fmt.Errorf("unknown backend %q (expected sqlite, postgres or json)", c.Backend)
	}
	if c.Timezone != "" && !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	if c.KVURL != "" && !strings.HasPrefix(c.KVURL, "redis://") && !strings.HasPrefix(c.KVURL, "rediss://") &&
		c.KVURL != "memory://" && c.KVURL != constants.KeyringStorage {
		return fmt.Errorf("unsupported kv_url %q (expected redis://, rediss://, memory:// or keyring)", c.KVURL)
	}
	return nil
}

// ResolvedBackend returns Backend, or the backend implied by Storage.
func (c *Config) ResolvedBackend() Backend {
	if c.Backend != "" {
		return c.Backend
	}
	return DetectBackend(c.Storage)
}

// DetectBackend infers the backend from a storage location.
func DetectBackend(location string) Backend {
	switch {
	case location == constants.KeyringStorage:
		return BackendPostgres
	case storage.IsPostgresConnString(location), strings.Contains(location, "host="), strings.Contains(location, "dbname="):
		return BackendPostgres
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		return BackendJSON
	}
	return BackendSQLite
}

// ConfigDir returns the directory holding the storage file, or the default
// config directory for non-file backends.
func (c *Config) ConfigDir() string {
	if c.ResolvedBackend() == BackendPostgres {
		return ExpandPath(constants.DefaultConfigDir)
	}
	return filepath.Dir(ExpandPath(c.Storage))
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
