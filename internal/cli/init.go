package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/habits"
	"github.com/julianstephens/cadence/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing storage file before initialization."`
	Source string `help:"Storage path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized cadence storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.println("Copy completed successfully!")
	}
	return nil
}

// reset removes a file-backed store. PostgreSQL storage is left alone.
func (c *InitCmd) reset(ctx *Context) error {
	path := ctx.Store.GetConfigPath()
	if config.DetectBackend(path) == config.BackendPostgres {
		return fmt.Errorf("--force is not supported for PostgreSQL storage")
	}

	if c.Source != "" {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		absSource, err := filepath.Abs(config.ExpandPath(c.Source))
		if err == nil && absSource == path {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing storage: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing storage: %w", err)
		}
		ctx.printf("Deleted existing storage at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing storage: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *Context) error {
	src, err := OpenStore(c.Source, "")
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}
	defer src.Close()

	ctx.println("  Copying settings...")
	settings, err := storage.LoadSettings(src)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := storage.SaveSettings(ctx.kv(), settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.println("  Copying recurrences...")
	rules, err := src.GetAllRecurrences()
	if err != nil {
		return fmt.Errorf("failed to get recurrences from source: %w", err)
	}
	for _, rule := range rules {
		if err := ctx.Store.AddRecurrence(rule); err != nil {
			return fmt.Errorf("failed to add recurrence %s: %w", rule.ID, err)
		}
	}
	ctx.printf("    Copied %d recurrences\n", len(rules))

	ctx.println("  Copying tasks...")
	tasks, err := src.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks from source: %w", err)
	}
	for _, task := range tasks {
		if err := ctx.Store.AddTask(task); err != nil {
			return fmt.Errorf("failed to add task %s: %w", task.ID, err)
		}
	}
	ctx.printf("    Copied %d tasks\n", len(tasks))

	ctx.println("  Copying fixed blocks...")
	blocks, err := src.GetAllFixedBlocks()
	if err != nil {
		return fmt.Errorf("failed to get fixed blocks from source: %w", err)
	}
	for _, block := range blocks {
		if err := ctx.Store.AddFixedBlock(block); err != nil {
			return fmt.Errorf("failed to add fixed block %s: %w", block.ID, err)
		}
	}
	ctx.printf("    Copied %d fixed blocks\n", len(blocks))

	ctx.println("  Copying completions...")
	seen := make(map[string]bool)
	copied := 0
	for _, task := range tasks {
		id := habits.RecordID(task)
		if seen[id] {
			continue
		}
		seen[id] = true
		ok, err := habits.CopyRecord(src, ctx.kv(), id)
		if err != nil {
			return fmt.Errorf("failed to copy completions for %s: %w", id, err)
		}
		if ok {
			copied++
		}
	}
	ctx.printf("    Copied %d completion records\n", copied)

	return nil
}
