package models

import (
	"testing"
	"time"
)

func loadNewYork(t *testing.T) *time.Location {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return ny
}

func TestTaskIn(t *testing.T) {
	ny := loadNewYork(t)
	// 2025-03-06 01:00 UTC is Wednesday evening in New York
	start := time.Date(2025, 3, 6, 1, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	task := Task{ID: "t1", StartAt: &start, EndAt: &end, CreatedAt: start}

	local := task.In(ny)
	if local.StartAt.Location() != ny || local.EndAt.Location() != ny || local.CreatedAt.Location() != ny {
		t.Fatalf("instants not moved to %s: %+v", ny, local)
	}
	if !local.StartAt.Equal(start) || !local.EndAt.Equal(end) {
		t.Errorf("In() changed the instants: %v-%v", local.StartAt, local.EndAt)
	}
	if local.StartAt.Weekday() != time.Wednesday || local.StartAt.Hour() != 20 {
		t.Errorf("local start = %v, want Wednesday 20:00", local.StartAt)
	}
	if task.StartAt.Location() != time.UTC {
		t.Error("In() must not modify the receiver's times")
	}
}

func TestTaskInWithoutTimes(t *testing.T) {
	local := Task{ID: "t1"}.In(loadNewYork(t))
	if local.StartAt != nil || local.EndAt != nil || local.DeletedAt != nil {
		t.Errorf("nil times must stay nil: %+v", local)
	}
}

func TestRecurrenceIn(t *testing.T) {
	ny := loadNewYork(t)
	// local midnight of 2025-03-26 as stored
	until := time.Date(2025, 3, 26, 4, 0, 0, 0, time.UTC)
	rule := Recurrence{ID: "r1", EndDate: &until}.In(ny)

	y, m, d := rule.EndDate.Date()
	if y != 2025 || m != time.March || d != 26 || rule.EndDate.Hour() != 0 {
		t.Errorf("EndDate = %v, want 2025-03-26 00:00 local", rule.EndDate)
	}
}

func TestFixedBlockIn(t *testing.T) {
	ny := loadNewYork(t)
	start := time.Date(2025, 1, 10, 14, 0, 0, 0, time.FixedZone("EST", -5*3600))
	block := FixedBlock{ID: "b1", StartAt: start, EndAt: start.Add(time.Hour)}.In(ny)

	if block.StartAt.Location() != ny || block.EndAt.Location() != ny {
		t.Errorf("block times not moved to %s: %+v", ny, block)
	}
	if block.StartAt.Hour() != 14 || !block.StartAt.Equal(start) {
		t.Errorf("StartAt = %v, want 14:00 local", block.StartAt)
	}
}
