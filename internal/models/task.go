package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task is a one-off or recurring item. For a recurring task StartAt/EndAt
// are the template for time-of-day and duration of every occurrence.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	StartAt      *time.Time `json:"start_at,omitempty"`
	EndAt        *time.Time `json:"end_at,omitempty"`
	RecurrenceID string     `json:"recurrence_id,omitempty"`
	Status       TaskStatus `json:"status"`
	Priority     int        `json:"priority"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Bounds returns the task's start and end. A missing end collapses to the
// start (zero duration). ok is false when the task has no start.
func (t Task) Bounds() (start, end time.Time, ok bool) {
	if t.StartAt == nil {
		return time.Time{}, time.Time{}, false
	}
	start = *t.StartAt
	end = start
	if t.EndAt != nil {
		end = *t.EndAt
	}
	return start, end, true
}

// HasInterval reports whether the task has both a start and an end.
func (t Task) HasInterval() bool {
	return t.StartAt != nil && t.EndAt != nil
}

// In returns a copy of t with its instants expressed in loc. Stores hand
// back UTC or fixed-offset times; calendar rules need the user's zone.
func (t Task) In(loc *time.Location) Task {
	t.StartAt = inLocation(t.StartAt, loc)
	t.EndAt = inLocation(t.EndAt, loc)
	t.CreatedAt = t.CreatedAt.In(loc)
	t.DeletedAt = inLocation(t.DeletedAt, loc)
	return t
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
