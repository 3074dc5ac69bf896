package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
)

// ConflictKind identifies what kind of existing item a candidate collides with
type ConflictKind string

const (
	ConflictTask       ConflictKind = "task"
	ConflictFixedBlock ConflictKind = "fixed_block"
)

// Conflict is one existing item overlapping a candidate occurrence
type Conflict struct {
	Kind        ConflictKind
	ID          string
	Title       string
	StartAt     time.Time
	EndAt       time.Time
	Description string
}

// OccurrenceConflict groups every item colliding with one candidate
// occurrence. Head is the human-readable time of the occurrence.
type OccurrenceConflict struct {
	Occurrence models.Occurrence
	Head       string
	Items      []Conflict
}

// Report is the result of a conflict check, grouped per candidate occurrence
type Report struct {
	Checked     int // candidate occurrences examined
	Occurrences []OccurrenceConflict
}

// HasConflicts returns true if any candidate occurrence collides with something
func (r *Report) HasConflicts() bool {
	return len(r.Occurrences) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (r *Report) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conflicts detected in %d of %d occurrence(s):\n", len(r.Occurrences), r.Checked)
	for _, oc := range r.Occurrences {
		fmt.Fprintf(&b, "%s\n", oc.Head)
		for _, item := range oc.Items {
			fmt.Fprintf(&b, "  - %s\n", item.Description)
		}
	}
	return b.String()
}

// Pool is the set of existing items a candidate is checked against
type Pool struct {
	Tasks       []models.Task
	Recurrences map[string]models.Recurrence
	FixedBlocks []models.FixedBlock
}

// Validator detects time-range conflicts between a candidate and existing items
type Validator struct {
	now func() time.Time
}

// New creates a new Validator
func New() *Validator {
	return &Validator{now: time.Now}
}

// NewWithClock creates a Validator that uses now as its clock
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// CheckConflicts checks a single candidate interval against the pool.
// Tasks with ID excludeID (the item being edited) are ignored.
func (v *Validator) CheckConflicts(start, end time.Time, pool Pool, excludeID string) Report {
	return v.check([]models.Occurrence{{StartAt: start, EndAt: end}}, pool, excludeID)
}

// CheckRecurringConflicts expands the candidate through its recurrence rule
// and checks every generated occurrence against the pool.
func (v *Validator) CheckRecurringConflicts(start, end time.Time, rule *models.Recurrence, pool Pool, excludeID string) Report {
	return v.check(recurrence.Generate(start, end, rule), pool, excludeID)
}

func (v *Validator) check(candidates []models.Occurrence, pool Pool, excludeID string) Report {
	report := Report{Checked: len(candidates)}
	busy := v.busyIntervals(pool, excludeID)

	// O(n*m) over candidate and existing occurrences, both capped by the generator
	for _, occ := range candidates {
		var items []Conflict
		for _, b := range busy {
			if occ.Overlaps(b.StartAt, b.EndAt) {
				items = append(items, b)
			}
		}
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].StartAt.Before(items[j].StartAt)
		})
		report.Occurrences = append(report.Occurrences, OccurrenceConflict{
			Occurrence: occ,
			Head:       FormatHead(occ),
			Items:      items,
		})
	}

	return report
}

// busyIntervals expands the pool into concrete intervals. Recurring tasks
// are expanded through their own rules; task intervals that already ended
// are dropped. Fixed blocks are always kept.
func (v *Validator) busyIntervals(pool Pool, excludeID string) []Conflict {
	now := v.now()
	var busy []Conflict

	for _, task := range pool.Tasks {
		if task.DeletedAt != nil || !task.HasInterval() {
			continue
		}
		if excludeID != "" && task.ID == excludeID {
			continue
		}

		var rule *models.Recurrence
		if task.RecurrenceID != "" {
			if r, ok := pool.Recurrences[task.RecurrenceID]; ok && r.DeletedAt == nil {
				rule = &r
			}
		}

		for _, occ := range recurrence.Generate(*task.StartAt, *task.EndAt, rule) {
			if !occ.EndAt.After(now) {
				continue
			}
			busy = append(busy, Conflict{
				Kind:        ConflictTask,
				ID:          task.ID,
				Title:       task.Title,
				StartAt:     occ.StartAt,
				EndAt:       occ.EndAt,
				Description: fmt.Sprintf("Task \"%s\" (%s)", task.Title, formatRange(occ.StartAt, occ.EndAt)),
			})
		}
	}

	for _, block := range pool.FixedBlocks {
		if block.DeletedAt != nil {
			continue
		}
		busy = append(busy, Conflict{
			Kind:        ConflictFixedBlock,
			ID:          block.ID,
			Title:       block.Title,
			StartAt:     block.StartAt,
			EndAt:       block.EndAt,
			Description: fmt.Sprintf("Fixed block \"%s\" (%s)", block.Title, formatRange(block.StartAt, block.EndAt)),
		})
	}

	return busy
}

// FormatHead renders an occurrence as "Mon 2006-01-02 15:04-16:00".
func FormatHead(occ models.Occurrence) string {
	return occ.StartAt.Format("Mon ") + formatRange(occ.StartAt, occ.EndAt)
}

func formatRange(start, end time.Time) string {
	head := start.Format(constants.DateTimeFormat)
	end = end.In(start.Location())
	if end.YearDay() == start.YearDay() && end.Year() == start.Year() {
		return head + "-" + end.Format(constants.TimeFormat)
	}
	return head + " - " + end.Format(constants.DateTimeFormat)
}
