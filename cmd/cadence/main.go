package main

import (
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/habits"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
	"github.com/julianstephens/cadence/internal/validation"
)

var CLI struct {
	Version    kong.VersionFlag
	ConfigFile string `name:"config" help:"Path to the YAML config file." type:"path" default:"~/.config/cadence/config.yaml"`
	Storage    string `help:"Storage path (SQLite or .json), PostgreSQL connection string without password, or \"keyring\"."`
	Backend    string `help:"Storage backend (sqlite|postgres|json). Detected from --storage when empty."`
	KVURL      string `name:"kv-url" help:"Key-value store for completions and settings (redis://..., memory:// or keyring)."`
	Timezone   string `help:"IANA timezone for day boundaries. Defaults to the timezone setting."`
	Debug      bool   `help:"Log to stderr at debug level."`

	Init     cli.InitCmd    `cmd:"" help:"Initialize cadence storage."`
	Migrate  cli.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Check    cli.CheckCmd   `cmd:"" help:"Check a candidate time range for conflicts without saving."`
	Inspect  cli.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Task     struct {
		Add    cli.TaskAddCmd    `cmd:"" help:"Add a new task."`
		List   cli.TaskListCmd   `cmd:"" help:"List all tasks."`
		Show   cli.TaskShowCmd   `cmd:"" help:"Show a task and its occurrences."`
		Delete cli.TaskDeleteCmd `cmd:"" help:"Delete a task."`
	} `cmd:"" help:"Manage tasks."`
	Block struct {
		Add    cli.BlockAddCmd    `cmd:"" help:"Add a fixed schedule block."`
		List   cli.BlockListCmd   `cmd:"" help:"List fixed schedule blocks."`
		Delete cli.BlockDeleteCmd `cmd:"" help:"Delete a fixed schedule block."`
	} `cmd:"" help:"Manage fixed schedule blocks."`
	Habit    cli.HabitCmd `cmd:"" help:"Track completions."`
	Settings struct {
		Show cli.SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
		Set  cli.SettingsSetCmd  `cmd:"" help:"Update settings."`
	} `cmd:"" help:"Manage application settings."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup of the storage file."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore the storage file from a backup."`
	} `cmd:"" help:"Back up and restore file storage."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
		Get    cli.KeyringGetCmd    `cmd:"" help:"Show a stored connection string (password masked)."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove a connection string from the OS keyring."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Recurring tasks, conflict checks and habit tracking"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		errors.Fatal(err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir(), LogDir: cfg.LogDir}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	command := strings.Fields(ctx.Command())[0]

	// keyring commands do not touch storage
	if command == "keyring" {
		errors.Fatal(ctx.Run(&cli.Context{}))
		return
	}

	store, err := cli.OpenStore(cfg.Storage, cfg.ResolvedBackend())
	if err != nil {
		errors.Fatal(err)
	}

	kv, closeKV, err := cli.OpenKV(cfg.KVURL)
	if err != nil {
		errors.Fatal(err)
	}

	// init creates the store; doctor reports a failed load itself and
	// backup can restore over a store that no longer loads
	loaded := false
	if command != "init" {
		err := store.Load()
		if err != nil && command != "doctor" && command != "backup" {
			_ = closeKV()
			errors.Fatal(err)
		}
		loaded = err == nil
	}

	var settingsKV storage.KV = store
	if kv != nil {
		settingsKV = kv
	}
	loc := resolveLocation(cfg.Timezone, settingsKV, loaded)

	appCtx := &cli.Context{
		Store:     store,
		KV:        kv,
		Habits:    habits.New(settingsKV, habits.WithLocation(loc)),
		Validator: validation.New(),
		Location:  loc,
	}

	err = ctx.Run(appCtx)
	if closeErr := closeKV(); closeErr != nil {
		logger.Warn("Failed to close key-value store", "error", closeErr)
	}
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	errors.Fatal(err)
}

func applyFlags(cfg *config.Config) {
	if CLI.Storage != "" {
		cfg.Storage = CLI.Storage
	}
	if CLI.Backend != "" {
		cfg.Backend = config.Backend(CLI.Backend)
	}
	if CLI.KVURL != "" {
		cfg.KVURL = CLI.KVURL
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}
}

// resolveLocation prefers the configured timezone, then the stored
// timezone setting, then the system zone.
func resolveLocation(timezone string, kv storage.KV, loaded bool) *time.Location {
	if timezone == "" && loaded {
		if settings, err := storage.LoadSettings(kv); err == nil {
			timezone = settings.Timezone
		} else {
			logger.Warn("Failed to read timezone setting", "error", err)
		}
	}
	loc, err := utils.LoadLocation(timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using local time", "timezone", timezone, "error", err)
		return time.Local
	}
	return loc
}
