package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/storage/jsonfile"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

type BackupCreateCmd struct{}

func (cmd *BackupCreateCmd) Run(ctx *Context) error {
	mgr, err := ctx.backups()
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.printf("✓ Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (cmd *BackupListCmd) Run(ctx *Context) error {
	mgr, err := ctx.backups()
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.printf("No backups found in %s\n", mgr.Dir())
		return nil
	}

	ctx.println(titleStyle.Render(fmt.Sprintf("Backups in %s", mgr.Dir())))
	for _, s := range snaps {
		ctx.printf("  %s  %s  %s\n",
			valueStyle.Render(s.TakenAt.Format("2006-01-02 15:04:05")),
			labelStyle.Render(fmt.Sprintf("%8.1f KB", float64(s.Size)/1024)),
			s.Path)
	}
	return nil
}

type BackupRestoreCmd struct {
	Name string `arg:"" help:"Backup file name (from 'backup list') or path."`
	Yes  bool   `short:"y" help:"Restore without asking."`
}

func (cmd *BackupRestoreCmd) Run(ctx *Context) error {
	mgr, err := ctx.backups()
	if err != nil {
		return err
	}
	path := mgr.Resolve(cmd.Name)

	if !cmd.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Replace %s with %s?", ctx.Store.GetConfigPath(), path))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			ctx.println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	safety, err := mgr.Restore(path)
	if err != nil {
		return err
	}
	if safety != "" {
		ctx.printf("Saved current storage to: %s\n", safety)
	}
	ctx.printf("✓ Restored from: %s\n", path)
	return nil
}

// backups returns the snapshot manager for file-backed storage.
func (c *Context) backups() (*backup.Manager, error) {
	switch c.Store.(type) {
	case *sqlite.Store, *jsonfile.Store:
		return backup.NewManager(c.Store.GetConfigPath(), backup.WithClock(func() time.Time { return c.now().Local() })), nil
	}
	return nil, backup.ErrUnsupported
}
