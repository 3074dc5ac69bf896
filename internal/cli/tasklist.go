package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
)

type TaskListCmd struct {
	Recurring bool `help:"Show only recurring tasks."`
}

func (c *TaskListCmd) Run(ctx *Context) error {
	tasks, err := ctx.tasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	pool, err := ctx.Pool()
	if err != nil {
		return err
	}

	shown := 0
	for _, task := range tasks {
		if c.Recurring && task.RecurrenceID == "" {
			continue
		}
		if shown == 0 {
			ctx.println(titleStyle.Render("Tasks:"))
		}
		shown++

		repeat := "once"
		if rule, ok := pool.Recurrences[task.RecurrenceID]; ok {
			repeat = recurrence.Describe(&rule)
		}
		ctx.printf("  %s %s - %s (%s, priority %d)\n",
			labelStyle.Render(shortID(task.ID)), valueStyle.Render(task.Title),
			formatTaskTime(task), repeat, task.Priority)
		if task.Status != "" && task.Status != models.TaskStatusPending {
			ctx.printf("      Status: %s\n", task.Status)
		}
	}

	if shown == 0 {
		ctx.println("No tasks found")
	}
	return nil
}
