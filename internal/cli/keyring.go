package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/cadence/internal/keyring"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/postgres"
)

// KeyringSetCmd stores a connection string in the OS keyring
type KeyringSetCmd struct {
	Account string `arg:"" enum:"database,redis" help:"Secret to store (database or redis)."`
	Value   string `arg:"" help:"PostgreSQL connection string or Redis URL."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	account, err := keyring.ParseAccount(cmd.Account)
	if err != nil {
		return err
	}

	switch account {
	case keyring.AccountDatabase:
		if !storage.IsPostgresConnString(cmd.Value) && !strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.println(warningStyle.Render("⚠ Warning: Connection string contains embedded credentials."))
			ctx.println("   It will be stored as-is in the encrypted OS keyring.")
			ctx.println("   If you prefer to keep passwords separate, consider using .pgpass instead.")
		}
	case keyring.AccountRedis:
		if !strings.HasPrefix(cmd.Value, "redis://") && !strings.HasPrefix(cmd.Value, "rediss://") {
			return errors.New("redis URL must start with redis:// or rediss://")
		}
	}

	if err := keyring.Set(account, cmd.Value); err != nil {
		return err
	}

	ctx.printf("✓ %s stored successfully in OS keyring\n", cmd.Account)
	ctx.println("  Use \"keyring\" as the storage location (or kv_url) to read it")
	return nil
}

// KeyringGetCmd prints a stored secret with its password masked
type KeyringGetCmd struct {
	Account string `arg:"" enum:"database,redis" help:"Secret to show (database or redis)."`
}

func (cmd *KeyringGetCmd) Run(ctx *Context) error {
	account, err := keyring.ParseAccount(cmd.Account)
	if err != nil {
		return err
	}
	value, err := keyring.Get(account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s entry found in keyring. Use 'cadence keyring set %s' to store one", cmd.Account, cmd.Account)
		}
		return err
	}
	ctx.println(maskPassword(value))
	return nil
}

// KeyringDeleteCmd removes a stored secret
type KeyringDeleteCmd struct {
	Account string `arg:"" enum:"database,redis" help:"Secret to delete (database or redis)."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	account, err := keyring.ParseAccount(cmd.Account)
	if err != nil {
		return err
	}
	if err := keyring.Delete(account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s entry found in keyring", cmd.Account)
		}
		return err
	}
	ctx.printf("✓ %s deleted from OS keyring\n", cmd.Account)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.println("✓ OS keyring is available")
	accounts := map[string]keyring.Account{"database": keyring.AccountDatabase, "redis": keyring.AccountRedis}
	for _, name := range []string{"database", "redis"} {
		if keyring.Lookup(accounts[name]) != "" {
			ctx.printf("✓ %s entry is stored\n", name)
		} else {
			ctx.printf("ℹ No %s entry stored\n", name)
		}
	}
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "****")
			return u.String()
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
