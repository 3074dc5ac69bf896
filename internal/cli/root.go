package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/deadline"
	"github.com/julianstephens/cadence/internal/habits"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
	"github.com/julianstephens/cadence/internal/validation"
)

type Context struct {
	Store     storage.Provider
	KV        storage.KV
	Habits    *habits.Store
	Validator *validation.Validator
	Location  *time.Location

	// Out defaults to stdout.
	Out io.Writer
	// Confirm asks a yes/no question. Defaults to an interactive prompt.
	Confirm func(prompt string) (bool, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	earlyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))

	onTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	lateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now().In(c.location())
	}
	return c.Now().In(c.location())
}

func (c *Context) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Context) kv() storage.KV {
	if c.KV != nil {
		return c.KV
	}
	return c.Store
}

func (c *Context) habits() *habits.Store {
	if c.Habits == nil {
		c.Habits = habits.New(c.kv(), habits.WithLocation(c.location()), habits.WithClock(c.now))
	}
	return c.Habits
}

func (c *Context) validator() *validation.Validator {
	if c.Validator == nil {
		c.Validator = validation.NewWithClock(c.now)
	}
	return c.Validator
}

func (c *Context) confirm(prompt string) (bool, error) {
	if c.Confirm != nil {
		return c.Confirm(prompt)
	}

	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// tasks loads every live task with its instants in the context location.
func (c *Context) tasks() ([]models.Task, error) {
	tasks, err := c.Store.GetAllTasks()
	if err != nil {
		return nil, err
	}
	loc := c.location()
	for i := range tasks {
		tasks[i] = tasks[i].In(loc)
	}
	return tasks, nil
}

// blocks loads every live fixed block in the context location.
func (c *Context) blocks() ([]models.FixedBlock, error) {
	blocks, err := c.Store.GetAllFixedBlocks()
	if err != nil {
		return nil, err
	}
	loc := c.location()
	for i := range blocks {
		blocks[i] = blocks[i].In(loc)
	}
	return blocks, nil
}

// Pool loads every live task, recurrence and fixed block for conflict checks.
func (c *Context) Pool() (validation.Pool, error) {
	tasks, err := c.tasks()
	if err != nil {
		return validation.Pool{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	rules, err := c.Store.GetAllRecurrences()
	if err != nil {
		return validation.Pool{}, fmt.Errorf("failed to load recurrences: %w", err)
	}
	blocks, err := c.blocks()
	if err != nil {
		return validation.Pool{}, fmt.Errorf("failed to load fixed blocks: %w", err)
	}

	loc := c.location()
	byID := make(map[string]models.Recurrence, len(rules))
	for _, r := range rules {
		byID[r.ID] = r.In(loc)
	}
	return validation.Pool{Tasks: tasks, Recurrences: byID, FixedBlocks: blocks}, nil
}

// FindTask loads a task by id or by a unique id prefix.
func (c *Context) FindTask(id string) (models.Task, error) {
	task, err := c.Store.GetTask(id)
	if err == nil {
		return task.In(c.location()), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return task, err
	}

	tasks, listErr := c.tasks()
	if listErr != nil {
		return models.Task{}, listErr
	}
	var matches []models.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, id) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, err
	case 1:
		return matches[0], nil
	}
	return models.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", id, len(matches))
}

// TaskWithRule loads a task and, when it repeats, its recurrence.
func (c *Context) TaskWithRule(id string) (models.Task, *models.Recurrence, error) {
	task, err := c.FindTask(id)
	if err != nil {
		return models.Task{}, nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	if task.RecurrenceID == "" {
		return task, nil, nil
	}
	rule, err := c.Store.GetRecurrence(task.RecurrenceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return task, nil, nil
		}
		return models.Task{}, nil, fmt.Errorf("failed to get recurrence for task %s: %w", id, err)
	}
	rule = rule.In(c.location())
	return task, &rule, nil
}

// parseWhen parses a "YYYY-MM-DD HH:MM" instant in the context location.
func (c *Context) parseWhen(value string) (time.Time, error) {
	return utils.ParseDateTimeInLocation(value, c.location())
}

// parseDay parses a date, defaulting to today when value is empty.
func (c *Context) parseDay(value string) (time.Time, error) {
	if value == "" {
		return utils.StartOfDay(c.now()), nil
	}
	d, err := utils.ParseDateInLocation(value, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return d, nil
}

// RuleFlags are the repeat options shared by task add and check.
type RuleFlags struct {
	Repeat       string `short:"r" help:"Repeat frequency (daily|weekly|monthly|yearly)."`
	Interval     int    `short:"i" help:"Repeat every N periods." default:"1"`
	Weekdays     string `short:"w" help:"Comma-separated weekdays for weekly repeats (e.g. mon,wed)."`
	MonthDays    string `help:"Comma-separated days of month for monthly repeats (e.g. 1,15)."`
	Until        string `short:"u" help:"Last date of the series (YYYY-MM-DD), inclusive."`
	Merge        bool   `help:"Track the whole series as one streak."`
	AutoComplete bool   `help:"Mark ended occurrences done automatically."`
}

func (f RuleFlags) validate() error {
	if f.Repeat == "" {
		if f.Weekdays != "" || f.MonthDays != "" || f.Until != "" || f.Merge || f.AutoComplete {
			return errors.New("repeat options require --repeat")
		}
		return nil
	}
	if !models.Frequency(strings.ToLower(f.Repeat)).Valid() {
		return fmt.Errorf("invalid repeat %q (expected daily, weekly, monthly or yearly)", f.Repeat)
	}
	if f.Interval < 1 {
		return errors.New("interval must be at least 1")
	}
	if f.Weekdays != "" && len(recurrence.ParseWeekdays(f.Weekdays)) == 0 {
		return fmt.Errorf("invalid weekdays: %s", f.Weekdays)
	}
	if f.MonthDays != "" && len(recurrence.ParseMonthDays(f.MonthDays)) == 0 {
		return fmt.Errorf("invalid days of month: %s", f.MonthDays)
	}
	if f.Until != "" {
		if _, err := time.Parse(constants.DateFormat, f.Until); err != nil {
			return fmt.Errorf("invalid --until date (expected YYYY-MM-DD): %w", err)
		}
	}
	return nil
}

// rule builds the recurrence described by the flags, or nil for a one-off.
func (f RuleFlags) rule(loc *time.Location) (*models.Recurrence, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if f.Repeat == "" {
		return nil, nil
	}

	r := &models.Recurrence{
		Frequency:    models.Frequency(strings.ToLower(f.Repeat)),
		Interval:     f.Interval,
		DaysOfWeek:   recurrence.ParseWeekdays(f.Weekdays),
		DaysOfMonth:  recurrence.ParseMonthDays(f.MonthDays),
		Enabled:      true,
		Merge:        f.Merge,
		AutoComplete: f.AutoComplete,
	}
	if f.Until != "" {
		until, err := utils.ParseDateInLocation(f.Until, loc)
		if err != nil {
			return nil, err
		}
		r.EndDate = &until
	}
	return r, nil
}

func formatInstant(t time.Time) string {
	return t.Format(constants.DateTimeFormat)
}

func formatSpan(start, end time.Time) string {
	if utils.SameDay(start, end) {
		return fmt.Sprintf("%s - %s", formatInstant(start), end.Format(constants.TimeFormat))
	}
	return fmt.Sprintf("%s - %s", formatInstant(start), formatInstant(end))
}

func formatTaskTime(task models.Task) string {
	start, end, ok := task.Bounds()
	if !ok {
		return "unscheduled"
	}
	if task.EndAt == nil {
		return formatInstant(start)
	}
	return formatSpan(start, end)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// statusLabel renders a classification for the terminal.
func statusLabel(c deadline.Classification) string {
	label := c.Status.Label()
	switch c.Status {
	case deadline.StatusEarly:
		label = earlyStyle.Render(label)
	case deadline.StatusOnTime:
		label = onTimeStyle.Render(label)
	case deadline.StatusLate:
		label = lateStyle.Render(label)
	}
	if c.DiffMinutes != 0 {
		return fmt.Sprintf("%s (%+d min)", label, c.DiffMinutes)
	}
	return label
}

// warnResult reports a completion write that did not reach storage.
func (c *Context) warnResult(res habits.Result) {
	if res.Err != nil {
		c.println(warningStyle.Render("⚠ completion was not saved: " + res.Err.Error()))
	}
}
