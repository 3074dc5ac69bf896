package cli

import (
	"fmt"
)

type TaskDeleteCmd struct {
	ID  string `arg:"" help:"Task ID (or unique prefix) to delete."`
	Yes bool   `short:"y" help:"Delete without asking."`
}

func (c *TaskDeleteCmd) Run(ctx *Context) error {
	task, err := ctx.FindTask(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", c.ID, err)
	}

	if !c.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Delete task %q?", task.Title))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			ctx.println("Task not deleted.")
			return nil
		}
	}

	if err := ctx.Store.DeleteTask(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	// a rule belongs to exactly one task
	if task.RecurrenceID != "" {
		if err := ctx.Store.DeleteRecurrence(task.RecurrenceID); err != nil {
			return fmt.Errorf("failed to delete recurrence: %w", err)
		}
	}

	ctx.printf("Deleted task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}
