package cli

import (
	"errors"
)

// ErrConflicts is returned by check --strict when the candidate collides
// with something.
var ErrConflicts = errors.New("conflicts detected")

type CheckCmd struct {
	Start   string `short:"s" help:"Candidate start (YYYY-MM-DD HH:MM)." required:""`
	End     string `short:"e" help:"Candidate end (YYYY-MM-DD HH:MM)."`
	Exclude string `help:"Task ID to leave out of the check (the task being edited)."`
	Strict  bool   `help:"Exit with an error when conflicts are found."`

	RuleFlags `embed:""`
}

func (c *CheckCmd) Validate() error {
	return c.RuleFlags.validate()
}

func (c *CheckCmd) Run(ctx *Context) error {
	cd, err := parseCandidate(ctx, "check", c.Start, c.End, 0, c.RuleFlags)
	if err != nil {
		return err
	}

	exclude := c.Exclude
	if exclude != "" {
		if task, err := ctx.FindTask(exclude); err == nil {
			exclude = task.ID
		}
	}

	report, err := ctx.conflicts(cd, exclude)
	if err != nil {
		return err
	}

	ctx.printf("Checked %d occurrence(s).\n", report.Checked)
	if !report.HasConflicts() {
		ctx.println(report.FormatReport())
		return nil
	}

	ctx.println(warningStyle.Render("⚠ CONFLICTS DETECTED"))
	ctx.printf("%s", report.FormatReport())
	if c.Strict {
		return ErrConflicts
	}
	return nil
}
