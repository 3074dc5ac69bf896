package models

import "time"

// Occurrence is one concrete instance of a task. Occurrences are derived
// from a task and its recurrence on demand and never stored.
type Occurrence struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// Overlaps reports whether two half-open intervals intersect. Intervals
// that only touch at an endpoint do not overlap.
func (o Occurrence) Overlaps(start, end time.Time) bool {
	return o.StartAt.Before(end) && o.EndAt.After(start)
}
