package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 1, day, hour, minute, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func task(id, title string, start, end time.Time) models.Task {
	return models.Task{ID: id, Title: title, StartAt: ptr(start), EndAt: ptr(end), Status: models.TaskStatusPending}
}

func TestCheckConflicts_OverlapBoundary(t *testing.T) {
	v := NewWithClock(clock)

	tests := []struct {
		name     string
		existing models.Task
		want     bool
	}{
		{"touching", task("a", "Touching", at(2, 11, 0), at(2, 12, 0)), false},
		{"overlapping by a minute", task("b", "Overlap", at(2, 10, 59), at(2, 11, 30)), true},
		{"ends at candidate start", task("c", "Before", at(2, 9, 0), at(2, 10, 0)), false},
		{"contains candidate", task("d", "Around", at(2, 9, 0), at(2, 12, 0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.CheckConflicts(at(2, 10, 0), at(2, 11, 0), Pool{Tasks: []models.Task{tt.existing}}, "")
			if report.HasConflicts() != tt.want {
				t.Errorf("HasConflicts() = %v, want %v\n%s", report.HasConflicts(), tt.want, report.FormatReport())
			}
		})
	}
}

func TestCheckConflicts_SkipsIncompleteExcludedAndExpired(t *testing.T) {
	v := NewWithClock(clock)
	noEnd := models.Task{ID: "no-end", Title: "No end", StartAt: ptr(at(2, 10, 0))}
	deleted := task("deleted", "Deleted", at(2, 10, 0), at(2, 11, 0))
	deleted.DeletedAt = ptr(testNow)

	pool := Pool{Tasks: []models.Task{
		noEnd,
		deleted,
		task("self", "Being edited", at(2, 10, 0), at(2, 11, 0)),
		// ended before now
		task("past", "Yesterday", time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)),
	}}

	report := v.CheckConflicts(at(2, 10, 0), at(2, 11, 0), pool, "self")
	if report.HasConflicts() {
		t.Errorf("expected no conflicts, got:\n%s", report.FormatReport())
	}

	// A candidate in the past still does not collide with the expired task
	report = v.CheckConflicts(time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 11, 0, 0, 0, time.UTC), pool, "self")
	if report.HasConflicts() {
		t.Errorf("expired task must not block, got:\n%s", report.FormatReport())
	}
}

func TestCheckConflicts_FixedBlocksAlwaysChecked(t *testing.T) {
	v := NewWithClock(func() time.Time { return at(20, 0, 0) })
	pool := Pool{FixedBlocks: []models.FixedBlock{
		{ID: "class", Title: "Class", StartAt: at(2, 10, 30), EndAt: at(2, 12, 0)},
	}}

	// The block ended long before "now" but is still reported
	report := v.CheckConflicts(at(2, 10, 0), at(2, 11, 0), pool, "")
	if !report.HasConflicts() {
		t.Fatal("expected the fixed block to conflict")
	}
	item := report.Occurrences[0].Items[0]
	if item.Kind != ConflictFixedBlock || item.ID != "class" {
		t.Errorf("unexpected conflict item %+v", item)
	}
}

func TestCheckConflicts_ExpandsRecurringNeighbors(t *testing.T) {
	v := NewWithClock(clock)
	weekly := models.Recurrence{
		ID:        "weekly",
		Frequency: models.FrequencyWeekly,
		Enabled:   true,
		EndDate:   ptr(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)),
	}
	gym := task("gym", "Gym", at(2, 18, 0), at(2, 19, 0)) // Thursday
	gym.RecurrenceID = weekly.ID

	pool := Pool{
		Tasks:       []models.Task{gym},
		Recurrences: map[string]models.Recurrence{weekly.ID: weekly},
	}

	// The 10th Thursday after Jan 2
	candidateStart := at(2, 18, 30).AddDate(0, 0, 7*9)
	report := v.CheckConflicts(candidateStart, candidateStart.Add(time.Hour), pool, "")
	if !report.HasConflicts() {
		t.Fatal("expected the future weekly occurrence to conflict")
	}
	got := report.Occurrences[0].Items[0].StartAt
	if want := at(2, 18, 0).AddDate(0, 0, 63); !got.Equal(want) {
		t.Errorf("conflicting occurrence starts at %v, want %v", got, want)
	}

	// A deleted rule leaves only the base instance
	weekly.DeletedAt = ptr(testNow)
	pool.Recurrences[weekly.ID] = weekly
	report = v.CheckConflicts(candidateStart, candidateStart.Add(time.Hour), pool, "")
	if report.HasConflicts() {
		t.Errorf("expected no conflict once the rule is deleted, got:\n%s", report.FormatReport())
	}
}

func TestCheckRecurringConflicts_GroupsPerOccurrence(t *testing.T) {
	v := NewWithClock(clock)
	pool := Pool{
		Tasks: []models.Task{
			task("dentist", "Dentist", at(3, 9, 30), at(3, 10, 30)),
			task("call", "Call", at(5, 8, 45), at(5, 9, 15)),
		},
		FixedBlocks: []models.FixedBlock{
			{ID: "standup", Title: "Standup", StartAt: at(5, 9, 0), EndAt: at(5, 9, 15)},
		},
	}
	rule := &models.Recurrence{
		Frequency: models.FrequencyDaily,
		Enabled:   true,
		EndDate:   ptr(at(5, 0, 0)),
	}

	report := v.CheckRecurringConflicts(at(2, 9, 0), at(2, 10, 0), rule, pool, "")
	if report.Checked != 4 {
		t.Errorf("expected 4 occurrences checked, got %d", report.Checked)
	}
	if len(report.Occurrences) != 2 {
		t.Fatalf("expected 2 conflicting occurrences, got %d:\n%s", len(report.Occurrences), report.FormatReport())
	}

	first := report.Occurrences[0]
	if !first.Occurrence.StartAt.Equal(at(3, 9, 0)) || len(first.Items) != 1 || first.Items[0].ID != "dentist" {
		t.Errorf("unexpected first block %+v", first)
	}
	if first.Head != "Fri 2025-01-03 09:00-10:00" {
		t.Errorf("unexpected head %q", first.Head)
	}

	second := report.Occurrences[1]
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on Jan 5, got %d", len(second.Items))
	}
	if second.Items[0].ID != "call" || second.Items[1].ID != "standup" {
		t.Errorf("items not ordered by start: %+v", second.Items)
	}
}

func TestCheckConflicts_ZeroDurationCandidate(t *testing.T) {
	v := NewWithClock(clock)
	pool := Pool{Tasks: []models.Task{task("a", "A", at(2, 10, 0), at(2, 11, 0))}}

	report := v.CheckConflicts(at(2, 10, 0), at(2, 10, 0), pool, "")
	if report.HasConflicts() {
		t.Errorf("zero-duration candidate at a start boundary should not conflict")
	}
	report = v.CheckRecurringConflicts(at(2, 10, 0), at(2, 10, 0), nil, pool, "")
	if report.Checked != 1 {
		t.Errorf("expected 1 occurrence checked, got %d", report.Checked)
	}
}

func TestCheckConflicts_ZeroDurationCandidateInside(t *testing.T) {
	v := NewWithClock(clock)
	pool := Pool{
		Tasks:       []models.Task{task("a", "A", at(2, 10, 0), at(2, 11, 0))},
		FixedBlocks: []models.FixedBlock{{ID: "b", Title: "Class", StartAt: at(2, 14, 0), EndAt: at(2, 15, 0)}},
	}

	tests := []struct {
		name string
		when time.Time
		want bool
	}{
		{"inside task", at(2, 10, 30), true},
		{"task end", at(2, 11, 0), false},
		{"inside block", at(2, 14, 15), true},
		{"block start", at(2, 14, 0), false},
		{"between", at(2, 12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.CheckConflicts(tt.when, tt.when, pool, "")
			if report.HasConflicts() != tt.want {
				t.Errorf("HasConflicts() = %v, want %v:\n%s", report.HasConflicts(), tt.want, report.FormatReport())
			}
		})
	}
}

func TestFormatReport(t *testing.T) {
	v := NewWithClock(clock)
	empty := v.CheckConflicts(at(2, 10, 0), at(2, 11, 0), Pool{}, "")
	if empty.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected empty report %q", empty.FormatReport())
	}

	pool := Pool{Tasks: []models.Task{task("a", "Lunch", at(2, 10, 30), at(2, 11, 30))}}
	report := v.CheckConflicts(at(2, 10, 0), at(2, 11, 0), pool, "")
	out := report.FormatReport()
	for _, want := range []string{"1 of 1", "Thu 2025-01-02 10:00-11:00", `Task "Lunch" (2025-01-02 10:30-11:30)`} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHeadAcrossMidnight(t *testing.T) {
	head := FormatHead(models.Occurrence{StartAt: at(2, 23, 0), EndAt: at(3, 1, 0)})
	if head != "Thu 2025-01-02 23:00 - 2025-01-03 01:00" {
		t.Errorf("unexpected head %q", head)
	}
}
