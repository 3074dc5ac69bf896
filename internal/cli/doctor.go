package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/keyring"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

// schemaStore is implemented by the SQL backed stores.
type schemaStore interface {
	SchemaVersion() (current, latest int, err error)
	Migrate(logFn func(string)) (int, error)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	report := func(name string, err error, warnOnly bool) {
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", name)
		case warnOnly:
			ctx.printf("⚠ %s: WARNING\n", name)
			ctx.printf("   %v\n", err)
		default:
			ctx.printf("❌ %s: FAIL\n", name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
		}
	}

	reachable := checkStorageReachable(ctx)
	report("Storage reachable", reachable, false)
	report("Schema version", checkSchemaVersion(ctx), false)
	report("Key-value store", checkKV(ctx), false)

	if reachable == nil {
		report("Data validation", checkData(ctx), false)
	} else {
		ctx.println("⊘ Data validation: SKIPPED (storage not reachable)")
	}

	report("Keyring", checkKeyring(), true)
	report("Clock/timezone", checkClockTimezone(ctx), false)

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.GetAllRecurrences(); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		// the JSON file has no schema
		return nil
	}
	current, latest, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'cadence migrate')", current, latest)
	}
	return nil
}

func checkKV(ctx *Context) error {
	if _, _, err := ctx.kv().Get(constants.SettingKeyPrefix + constants.SettingTimezone); err != nil {
		return fmt.Errorf("failed to read from key-value store: %w", err)
	}
	return nil
}

func checkData(ctx *Context) error {
	pool, err := ctx.Pool()
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(pool.Tasks))
	var problems []error
	for _, task := range pool.Tasks {
		if seen[task.ID] {
			problems = append(problems, fmt.Errorf("duplicate task ID found: %s", task.ID))
		}
		seen[task.ID] = true

		if task.StartAt != nil && task.EndAt != nil && !task.EndAt.After(*task.StartAt) {
			problems = append(problems, fmt.Errorf("task %s ends before it starts", shortID(task.ID)))
		}
		if task.RecurrenceID != "" {
			if _, ok := pool.Recurrences[task.RecurrenceID]; !ok {
				problems = append(problems, fmt.Errorf("task %s references missing recurrence %s", shortID(task.ID), shortID(task.RecurrenceID)))
			}
		}
	}
	for _, rule := range pool.Recurrences {
		if !rule.Frequency.Valid() {
			problems = append(problems, fmt.Errorf("recurrence %s has unknown frequency %q", shortID(rule.ID), rule.Frequency))
		}
	}
	for _, b := range pool.FixedBlocks {
		if !b.EndAt.After(b.StartAt) {
			problems = append(problems, fmt.Errorf("block %s ends before it starts", shortID(b.ID)))
		}
	}

	return errors.Join(problems...)
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	settings, err := storage.LoadSettings(ctx.kv())
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("configured timezone %q is not known to this system", settings.Timezone)
	}
	if ctx.location() == time.UTC {
		ctx.println("   Note: timezone is UTC")
	}
	return nil
}

type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(ctx *Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		ctx.println("Storage has no schema; nothing to migrate.")
		return nil
	}
	applied, err := s.Migrate(func(msg string) { ctx.println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if applied > 0 {
		ctx.printf("Applied %d migration(s)\n", applied)
	}
	return nil
}
