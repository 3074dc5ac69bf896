package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/validation"
)

type TaskAddCmd struct {
	Title    string `arg:"" help:"Task title."`
	Start    string `short:"s" help:"Start (YYYY-MM-DD HH:MM)." required:""`
	End      string `short:"e" help:"End (YYYY-MM-DD HH:MM)."`
	Priority int    `short:"p" help:"Priority (0-5)." default:"0"`
	Yes      bool   `short:"y" help:"Save without asking when conflicts are found."`

	RuleFlags `embed:""`
}

func (c *TaskAddCmd) Validate() error {
	if c.Priority < 0 || c.Priority > 5 {
		return fmt.Errorf("priority must be between 0 and 5")
	}
	return c.RuleFlags.validate()
}

// candidate is a parsed task interval plus its optional rule.
type candidate struct {
	start time.Time
	end   *time.Time
	rule  *models.Recurrence
}

// span returns the candidate's end, collapsing to start when open ended.
func (cd candidate) span() (time.Time, time.Time) {
	if cd.end == nil {
		return cd.start, cd.start
	}
	return cd.start, *cd.end
}

func parseCandidate(ctx *Context, title, start, end string, priority int, flags RuleFlags) (candidate, error) {
	var cd candidate

	s, err := ctx.parseWhen(start)
	if err != nil {
		return cd, err
	}
	cd.start = s

	if end != "" {
		e, err := ctx.parseWhen(end)
		if err != nil {
			return cd, err
		}
		cd.end = &e
	}

	in := validation.TaskInput{Title: title, StartAt: cd.start, EndAt: cd.end, Priority: priority}
	if err := validation.ValidateTaskInput(in); err != nil {
		return cd, err
	}

	cd.rule, err = flags.rule(ctx.location())
	if err != nil {
		return cd, err
	}
	return cd, nil
}

// conflicts runs the conflict check for cd against everything stored.
func (c *Context) conflicts(cd candidate, excludeID string) (validation.Report, error) {
	pool, err := c.Pool()
	if err != nil {
		return validation.Report{}, err
	}
	start, end := cd.span()
	if cd.rule != nil {
		return c.validator().CheckRecurringConflicts(start, end, cd.rule, pool, excludeID), nil
	}
	return c.validator().CheckConflicts(start, end, pool, excludeID), nil
}

func (c *TaskAddCmd) Run(ctx *Context) error {
	cd, err := parseCandidate(ctx, c.Title, c.Start, c.End, c.Priority, c.RuleFlags)
	if err != nil {
		return err
	}

	report, err := ctx.conflicts(cd, "")
	if err != nil {
		return err
	}
	if report.HasConflicts() {
		ctx.println(warningStyle.Render(fmt.Sprintf("⚠ %d CONFLICT(S) DETECTED", len(report.Occurrences))))
		ctx.printf("%s", report.FormatReport())
		if !c.Yes {
			ok, err := ctx.confirm("Save anyway?")
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !ok {
				ctx.println("Task not saved.")
				return nil
			}
		}
	}

	task := models.Task{
		ID:        uuid.New().String(),
		Title:     c.Title,
		StartAt:   &cd.start,
		EndAt:     cd.end,
		Status:    models.TaskStatusPending,
		Priority:  c.Priority,
		CreatedAt: ctx.now(),
	}

	if cd.rule != nil {
		cd.rule.ID = uuid.New().String()
		if err := ctx.Store.AddRecurrence(*cd.rule); err != nil {
			return fmt.Errorf("failed to save recurrence: %w", err)
		}
		task.RecurrenceID = cd.rule.ID
	}

	if err := ctx.Store.AddTask(task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	ctx.printf("Added task: %s (%s)\n", c.Title, shortID(task.ID))
	if cd.rule != nil {
		start, end := cd.span()
		n := len(recurrence.Generate(start, end, cd.rule))
		ctx.printf("  Repeats %s, %d occurrence(s)\n", recurrence.Describe(cd.rule), n)
	}
	return nil
}
