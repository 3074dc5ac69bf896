package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/keyring"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/jsonfile"
	"github.com/julianstephens/cadence/internal/storage/postgres"
	"github.com/julianstephens/cadence/internal/storage/rediskv"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

// ErrEmbeddedCredentials is returned when a PostgreSQL connection string
// given on the command line or in the config file carries a password.
var ErrEmbeddedCredentials = errors.New("PostgreSQL connection strings with embedded credentials are not allowed; store it with 'cadence keyring set database' or use .pgpass")

// OpenStore builds the catalog for a storage location. The location
// "keyring" reads a PostgreSQL connection string from the OS keyring, where
// an embedded password is accepted.
func OpenStore(location string, backend config.Backend) (storage.Provider, error) {
	if location == constants.KeyringStorage {
		connStr, err := keyring.Get(keyring.AccountDatabase)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no connection string found in keyring. Use 'cadence keyring set database' to store one")
			}
			return nil, err
		}
		if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("invalid connection string in keyring: %w", err)
		}
		logger.Debug("Using PostgreSQL connection string from keyring")
		return postgres.New(connStr), nil
	}

	if backend == "" {
		backend = config.DetectBackend(location)
	}

	switch backend {
	case config.BackendPostgres:
		if _, err := postgres.ValidateConnString(location); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, ErrEmbeddedCredentials
			}
			return nil, err
		}
		return postgres.New(location), nil
	case config.BackendJSON:
		return jsonfile.New(config.ExpandPath(location)), nil
	case config.BackendSQLite:
		return sqlite.NewStore(config.ExpandPath(location)), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// OpenKV returns the key-value store named by kvURL and a function that
// releases it. An empty kvURL returns a nil KV so the catalog's own
// key-value table is used.
func OpenKV(kvURL string) (storage.KV, func() error, error) {
	noop := func() error { return nil }

	switch {
	case kvURL == "":
		return nil, noop, nil
	case kvURL == "memory://":
		logger.Warn("Using in-memory key-value store; completions will not persist")
		return storage.NewMemoryKV(), noop, nil
	case kvURL == constants.KeyringStorage:
		url, err := keyring.Get(keyring.AccountRedis)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to read Redis URL from keyring: %w", err)
		}
		kvURL = url
	}

	if !strings.HasPrefix(kvURL, "redis://") && !strings.HasPrefix(kvURL, "rediss://") {
		return nil, noop, fmt.Errorf("unsupported kv url %q", kvURL)
	}
	kv, err := rediskv.New(kvURL)
	if err != nil {
		return nil, noop, err
	}
	return kv, kv.Close, nil
}
