package cli

import (
	"github.com/julianstephens/cadence/internal/habits"
	"github.com/julianstephens/cadence/internal/recurrence"
)

type TaskShowCmd struct {
	ID    string `arg:"" help:"ID of the task to show."`
	Limit int    `short:"n" help:"Maximum number of occurrences to print (0 for all)." default:"20"`
}

func (c *TaskShowCmd) Run(ctx *Context) error {
	task, rule, err := ctx.TaskWithRule(c.ID)
	if err != nil {
		return err
	}

	ctx.println(titleStyle.Render(task.Title))
	ctx.printf("  %s %s\n", labelStyle.Render("ID:      "), task.ID)
	ctx.printf("  %s %s\n", labelStyle.Render("When:    "), formatTaskTime(task))
	ctx.printf("  %s %s\n", labelStyle.Render("Repeats: "), recurrence.Describe(rule))
	ctx.printf("  %s %d\n", labelStyle.Render("Priority:"), task.Priority)

	start, end, ok := task.Bounds()
	if !ok {
		return nil
	}

	id := habits.RecordID(task)
	occs := recurrence.Generate(start, end, rule)
	ctx.printf("\nOccurrences (%d):\n", len(occs))
	for i, occ := range occs {
		if c.Limit > 0 && i >= c.Limit {
			ctx.printf("  ... %d more\n", len(occs)-i)
			break
		}
		line := "  " + formatSpan(occ.StartAt, occ.EndAt)
		if cl, done := ctx.habits().Classify(id, occ); done {
			line += "  ✓ " + statusLabel(cl)
		}
		ctx.println(line)
	}
	return nil
}
