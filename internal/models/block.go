package models

import "time"

// FixedBlock is a non-task calendar entry (class, shift, meeting) that
// always blocks its time range.
type FixedBlock struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     time.Time  `json:"end_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// In returns a copy of b with its instants expressed in loc.
func (b FixedBlock) In(loc *time.Location) FixedBlock {
	b.StartAt = b.StartAt.In(loc)
	b.EndAt = b.EndAt.In(loc)
	b.DeletedAt = inLocation(b.DeletedAt, loc)
	return b
}
