package cli

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/habits"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
)

type DebugCmd struct {
	DBPath    DebugDBPathCmd    `cmd:"" name:"db-path" help:"Print the storage location."`
	DumpTask  DebugDumpTaskCmd  `cmd:"" help:"Dump a task, its rule and occurrences as JSON."`
	DumpHabit DebugDumpHabitCmd `cmd:"" help:"Dump the raw completion record of a task."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	ctx.println(ctx.Store.GetConfigPath())
	return nil
}

type DebugDumpTaskCmd struct {
	ID string `arg:"" help:"ID of the task to dump."`
}

func (cmd *DebugDumpTaskCmd) Run(ctx *Context) error {
	task, rule, err := ctx.TaskWithRule(cmd.ID)
	if err != nil {
		return err
	}

	dump := struct {
		Task        models.Task         `json:"task"`
		Recurrence  *models.Recurrence  `json:"recurrence,omitempty"`
		Occurrences []models.Occurrence `json:"occurrences"`
	}{Task: task, Recurrence: rule}
	if start, end, ok := task.Bounds(); ok {
		dump.Occurrences = recurrence.Generate(start, end, rule)
	}

	jsonBytes, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the task whose completions to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *Context) error {
	task, err := ctx.FindTask(cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to get task %s: %w", cmd.ID, err)
	}
	id := habits.RecordID(task)

	for _, suffix := range []string{constants.HabitDaysSuffix, constants.HabitTimesSuffix} {
		key := constants.HabitKeyPrefix + id + suffix
		value, found, err := ctx.kv().Get(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !found {
			value = "(missing)"
		}
		ctx.printf("%s = %s\n", key, value)
	}
	return nil
}
