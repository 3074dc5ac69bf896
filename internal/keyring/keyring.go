package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/cadence/internal/constants"
)

// Account names a secret stored under the cadence service.
type Account string

const (
	// AccountDatabase holds the PostgreSQL connection string.
	AccountDatabase Account = constants.DefaultKeyringUser
	// AccountRedis holds the Redis URL of the completion store.
	AccountRedis Account = "redis-url"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// ParseAccount maps a CLI name ("database", "redis") to an Account.
func ParseAccount(name string) (Account, error) {
	switch name {
	case "database", "db", string(AccountDatabase):
		return AccountDatabase, nil
	case "redis", string(AccountRedis):
		return AccountRedis, nil
	}
	return "", fmt.Errorf("unknown keyring account %q (expected database or redis)", name)
}

// Get retrieves the secret stored for account.
func Get(account Account) (string, error) {
	value, err := keyring.Get(constants.AppName, string(account))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores value for account.
func Set(account Account, value string) error {
	if value == "" {
		return errors.New("value cannot be empty")
	}
	if err := keyring.Set(constants.AppName, string(account), value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret stored for account.
func Delete(account Account) error {
	if err := keyring.Delete(constants.AppName, string(account)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Lookup returns the secret for account, or "" when none is stored or the
// keyring cannot be reached.
func Lookup(account Account) string {
	value, err := Get(account)
	if err != nil {
		return ""
	}
	return value
}

// IsAvailable is a best-effort check that the OS keyring can be read.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
