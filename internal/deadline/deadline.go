package deadline

import (
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/utils"
)

// Status is the lateness of a completion relative to its due instant.
type Status string

const (
	StatusEarly  Status = "early"
	StatusOnTime Status = "on_time"
	StatusLate   Status = "late"
)

// Label returns a display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusEarly:
		return "early"
	case StatusOnTime:
		return "on time"
	case StatusLate:
		return "late"
	default:
		return string(s)
	}
}

// Classification is the result of classifying one completion.
type Classification struct {
	Status      Status `json:"status"`
	DiffMinutes int    `json:"diff_minutes"`
}

// Cutoff returns the end-of-day cutoff for a due instant: 23:59 in the due
// instant's location on the same calendar day. The cutoff is fixed and does
// not follow the cutoff_time setting.
func Cutoff(due time.Time) time.Time {
	y, m, d := due.Date()
	return time.Date(y, m, d, constants.CutoffHour, constants.CutoffMinute, 0, 0, due.Location())
}

// Classify labels a completion instant relative to a due instant.
//
// When the completion falls on the due date and the cutoff is after the due
// instant, anything up to the due instant is early, anything up to the cutoff
// is on time and anything later is late (measured from the cutoff).
// Otherwise the signed minute difference from the due instant decides, with
// a one minute tolerance either way.
func Classify(due, completion time.Time) Classification {
	cutoff := Cutoff(due)

	if utils.SameDay(due, completion) && cutoff.After(due) {
		switch {
		case !completion.After(due):
			return Classification{Status: StatusEarly, DiffMinutes: roundMinutes(completion.Sub(due))}
		case !completion.After(cutoff):
			return Classification{Status: StatusOnTime, DiffMinutes: 0}
		default:
			return Classification{Status: StatusLate, DiffMinutes: roundMinutes(completion.Sub(cutoff))}
		}
	}

	diff := roundMinutes(completion.Sub(due))
	switch {
	case diff < -1:
		return Classification{Status: StatusEarly, DiffMinutes: diff}
	case diff > 1:
		return Classification{Status: StatusLate, DiffMinutes: diff}
	default:
		return Classification{Status: StatusOnTime, DiffMinutes: diff}
	}
}

// roundMinutes rounds to whole minutes, halves toward +Inf (-30s -> 0, 30s -> 1).
func roundMinutes(d time.Duration) int {
	return int(math.Floor(float64(d.Milliseconds())/float64(time.Minute.Milliseconds()) + 0.5))
}
