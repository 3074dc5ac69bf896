package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *Context) error {
	settings, err := storage.LoadSettings(ctx.kv())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx.println(titleStyle.Render("Current Settings:"))
	ctx.printf("  %s %s\n", labelStyle.Render("Timezone:   "), settings.Timezone)
	ctx.printf("  %s %s (deadlines always use 23:59)\n", labelStyle.Render("Cutoff Time:"), settings.CutoffTime)
	ctx.printf("  %s %s\n", labelStyle.Render("Storage:    "), ctx.Store.GetConfigPath())
	return nil
}

type SettingsSetCmd struct {
	Timezone   *string `help:"IANA timezone name, or Local."`
	CutoffTime *string `help:"Displayed end-of-day cutoff (HH:MM)."`
}

func (c *SettingsSetCmd) Validate() error {
	if c.Timezone != nil && !utils.ValidateTimezone(*c.Timezone) {
		return fmt.Errorf("unknown timezone %q", *c.Timezone)
	}
	if c.CutoffTime != nil && !utils.ValidateTimeFormat(*c.CutoffTime) {
		return fmt.Errorf("invalid cutoff time %q (expected HH:MM)", *c.CutoffTime)
	}
	return nil
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	settings, err := storage.LoadSettings(ctx.kv())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.CutoffTime != nil {
		settings.CutoffTime = *c.CutoffTime
		updated = true
	}

	if !updated {
		ctx.println("No changes specified. Use 'cadence settings show' to view settings or flags to update them.")
		return nil
	}

	if err := storage.SaveSettings(ctx.kv(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.println("Settings updated successfully.")
	return nil
}
