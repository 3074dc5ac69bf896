package models

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Recurrence is a repeat rule attached to a task.
//
// DaysOfWeek is only consulted for weekly rules and DaysOfMonth only for
// monthly rules. EndDate is inclusive through the end of its calendar day.
// Merge switches habit tracking to all-or-nothing completion over the whole
// span; AutoComplete lets past occurrences be marked done automatically.
type Recurrence struct {
	ID           string         `json:"id"`
	Frequency    Frequency      `json:"frequency"`
	Interval     int            `json:"interval,omitempty"`
	DaysOfWeek   []time.Weekday `json:"days_of_week,omitempty"`
	DaysOfMonth  []int          `json:"days_of_month,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	Enabled      bool           `json:"enabled"`
	Merge        bool           `json:"merge"`
	AutoComplete bool           `json:"auto_complete"`
	DeletedAt    *time.Time     `json:"deleted_at,omitempty"`
}

// EffectiveInterval returns Interval, defaulting to 1 when unset or invalid.
func (r Recurrence) EffectiveInterval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// In returns a copy of r with EndDate expressed in loc, so the inclusive
// end day is judged on the user's calendar.
func (r Recurrence) In(loc *time.Location) Recurrence {
	r.EndDate = inLocation(r.EndDate, loc)
	r.DeletedAt = inLocation(r.DeletedAt, loc)
	return r
}
