package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/habits"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/utils"
)

type HabitCmd struct {
	Mark        HabitMarkCmd        `cmd:"" help:"Mark a task done for a day."`
	Unmark      HabitUnmarkCmd      `cmd:"" help:"Clear a day's completion."`
	MarkRange   HabitMarkRangeCmd   `cmd:"" help:"Mark every day in a date range."`
	UnmarkRange HabitUnmarkRangeCmd `cmd:"" help:"Clear every day in a date range."`
	Status      HabitStatusCmd      `cmd:"" help:"Show progress and completion timing."`
	Auto        HabitAutoCmd        `cmd:"" help:"Auto-complete ended occurrences of auto-complete tasks."`
}

// occurrenceOn returns the first occurrence of task starting on the
// calendar day of date.
func occurrenceOn(task models.Task, rule *models.Recurrence, date time.Time) (models.Occurrence, bool) {
	start, end, ok := task.Bounds()
	if !ok {
		return models.Occurrence{}, false
	}
	for _, occ := range recurrence.Generate(start, end, rule) {
		if utils.SameDay(occ.StartAt.In(date.Location()), date) {
			return occ, true
		}
	}
	return models.Occurrence{}, false
}

type HabitMarkCmd struct {
	ID   string `arg:"" help:"Task ID (or unique prefix)."`
	Date string `short:"d" help:"Day to mark (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitMarkCmd) Run(ctx *Context) error {
	task, rule, err := ctx.TaskWithRule(c.ID)
	if err != nil {
		return err
	}
	day, err := ctx.parseDay(c.Date)
	if err != nil {
		return err
	}
	id := habits.RecordID(task)
	dayStr := day.Format(constants.DateFormat)

	occ, ok := occurrenceOn(task, rule, day)
	if !ok {
		res := ctx.habits().MarkDay(id, day)
		ctx.warnResult(res)
		if res.Changed == 0 {
			ctx.printf("%s was already marked on %s\n", task.Title, dayStr)
			return nil
		}
		ctx.printf("Marked %s on %s (no scheduled occurrence that day)\n", task.Title, dayStr)
		return nil
	}

	res, cl := ctx.habits().MarkOccurrence(id, occ)
	ctx.warnResult(res)
	if res.Changed == 0 {
		ctx.printf("%s was already marked on %s: %s\n", task.Title, dayStr, statusLabel(cl))
		return nil
	}
	ctx.printf("Marked %s on %s: %s\n", task.Title, dayStr, statusLabel(cl))
	return nil
}

type HabitUnmarkCmd struct {
	ID   string `arg:"" help:"Task ID (or unique prefix)."`
	Date string `short:"d" help:"Day to clear (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitUnmarkCmd) Run(ctx *Context) error {
	task, _, err := ctx.TaskWithRule(c.ID)
	if err != nil {
		return err
	}
	day, err := ctx.parseDay(c.Date)
	if err != nil {
		return err
	}

	res := ctx.habits().UnmarkDay(habits.RecordID(task), day)
	ctx.warnResult(res)
	if res.Changed == 0 {
		ctx.printf("%s was not marked on %s\n", task.Title, day.Format(constants.DateFormat))
		return nil
	}
	ctx.printf("Unmarked %s on %s\n", task.Title, day.Format(constants.DateFormat))
	return nil
}

type HabitMarkRangeCmd struct {
	ID   string `arg:"" help:"Task ID (or unique prefix)."`
	From string `help:"First day (YYYY-MM-DD)." required:""`
	To   string `help:"Last day (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitMarkRangeCmd) Run(ctx *Context) error {
	task, rule, err := ctx.TaskWithRule(c.ID)
	if err != nil {
		return err
	}
	from, err := ctx.parseDay(c.From)
	if err != nil {
		return err
	}
	to, err := ctx.parseDay(c.To)
	if err != nil {
		return err
	}

	res := ctx.habits().MarkRange(habits.RecordID(task), from, to, &task, rule)
	ctx.warnResult(res)
	ctx.printf("Marked %d day(s) of %s\n", res.Changed, task.Title)
	return nil
}

type HabitUnmarkRangeCmd struct {
	ID   string `arg:"" help:"Task ID (or unique prefix)."`
	From string `help:"First day (YYYY-MM-DD)." required:""`
	To   string `help:"Last day (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitUnmarkRangeCmd) Run(ctx *Context) error {
	task, _, err := ctx.TaskWithRule(c.ID)
	if err != nil {
		return err
	}
	from, err := ctx.parseDay(c.From)
	if err != nil {
		return err
	}
	to, err := ctx.parseDay(c.To)
	if err != nil {
		return err
	}

	res := ctx.habits().UnmarkRange(habits.RecordID(task), from, to)
	ctx.warnResult(res)
	ctx.printf("Unmarked %d day(s) of %s\n", res.Changed, task.Title)
	return nil
}

type HabitStatusCmd struct {
	ID   string `arg:"" help:"Task ID (or unique prefix)."`
	Last int    `short:"n" help:"Number of most recent completions to show." default:"10"`
}

func (c *HabitStatusCmd) Run(ctx *Context) error {
	task, rule, err := ctx.TaskWithRule(c.ID)
	if err != nil {
		return err
	}

	id := habits.RecordID(task)
	p := ctx.habits().ComputeProgress(task, rule)

	ctx.println(titleStyle.Render(task.Title))
	ctx.printf("  %s %s\n", labelStyle.Render("Repeats: "), recurrence.Describe(rule))
	ctx.printf("  %s %d/%d (%d%%)\n", labelStyle.Render("Progress:"), p.Completed, p.Total, p.Percent)
	today := "not done"
	if p.TodayDone {
		today = "done"
	}
	ctx.printf("  %s %s\n", labelStyle.Render("Today:   "), today)

	start, end, ok := task.Bounds()
	if !ok {
		return nil
	}

	// classifications are recomputed from the stored instants
	var lines []string
	for _, occ := range recurrence.Generate(start, end, rule) {
		cl, done := ctx.habits().Classify(id, occ)
		if !done {
			continue
		}
		at, _ := ctx.habits().CompletedAt(id, occ.StartAt)
		lines = append(lines, fmt.Sprintf("  %s  done %s  %s",
			occ.StartAt.In(ctx.location()).Format(constants.DateFormat),
			formatInstant(at), statusLabel(cl)))
	}

	if len(lines) == 0 {
		ctx.println("\nNo completions yet.")
		return nil
	}
	if c.Last > 0 && len(lines) > c.Last {
		lines = lines[len(lines)-c.Last:]
	}
	ctx.println("\nCompletions:")
	for _, line := range lines {
		ctx.println(line)
	}
	return nil
}

type HabitAutoCmd struct {
	ID string `arg:"" optional:"" help:"Task ID (or unique prefix). Defaults to every task."`
}

func (c *HabitAutoCmd) Run(ctx *Context) error {
	var tasks []models.Task
	if c.ID != "" {
		task, err := ctx.FindTask(c.ID)
		if err != nil {
			return fmt.Errorf("failed to find task with ID %s: %w", c.ID, err)
		}
		tasks = append(tasks, task)
	} else {
		all, err := ctx.tasks()
		if err != nil {
			return fmt.Errorf("failed to get tasks: %w", err)
		}
		tasks = all
	}

	pool, err := ctx.Pool()
	if err != nil {
		return err
	}

	total := 0
	for _, task := range tasks {
		rule, ok := pool.Recurrences[task.RecurrenceID]
		if !ok || !rule.AutoComplete {
			continue
		}
		res := ctx.habits().AutoCompletePastIfEnabled(task, &rule)
		ctx.warnResult(res)
		if res.Changed > 0 {
			ctx.printf("  %s: marked %d day(s)\n", task.Title, res.Changed)
		}
		total += res.Changed
	}

	ctx.printf("Auto-completed %d day(s)\n", total)
	return nil
}
