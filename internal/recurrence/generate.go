package recurrence

import (
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// Generate expands a base interval and a recurrence rule into the ordered
// list of concrete occurrences the rule implies.
//
// The base occurrence is always first. A nil or disabled rule, a rule
// without an end date, or an end date at or before baseStart yields only the
// base occurrence. The end date is inclusive through the end of its calendar
// day, evaluated in baseStart's location. Every walk stops after
// constants.MaxOccurrences entries.
func Generate(baseStart, baseEnd time.Time, rule *models.Recurrence) []models.Occurrence {
	if baseEnd.IsZero() {
		baseEnd = baseStart
	}
	base := models.Occurrence{StartAt: baseStart, EndAt: baseEnd}

	if rule == nil || !rule.Enabled || rule.EndDate == nil || !rule.EndDate.After(baseStart) {
		return []models.Occurrence{base}
	}

	w := &walker{
		base:     baseStart,
		duration: baseEnd.Sub(baseStart),
		until:    utils.EndOfDay(rule.EndDate.In(baseStart.Location())),
		out:      []models.Occurrence{base},
	}

	interval := rule.EffectiveInterval()
	switch rule.Frequency {
	case models.FrequencyDaily:
		w.daily(interval)
	case models.FrequencyWeekly:
		w.weekly(interval, rule.DaysOfWeek)
	case models.FrequencyMonthly:
		w.monthly(interval, rule.DaysOfMonth)
	case models.FrequencyYearly:
		w.yearly(interval)
	}

	return w.out
}

type walker struct {
	base     time.Time
	duration time.Duration
	until    time.Time
	out      []models.Occurrence
}

// add appends an occurrence starting at start and reports whether the walk
// may continue.
func (w *walker) add(start time.Time) bool {
	if len(w.out) >= constants.MaxOccurrences {
		return false
	}
	w.out = append(w.out, models.Occurrence{StartAt: start, EndAt: start.Add(w.duration)})
	return len(w.out) < constants.MaxOccurrences
}

// at builds the given calendar date with the base time-of-day. Out of range
// days are normalized by time.Date.
func (w *walker) at(year int, month time.Month, day int) time.Time {
	b := w.base
	return time.Date(year, month, day, b.Hour(), b.Minute(), b.Second(), b.Nanosecond(), b.Location())
}

func (w *walker) daily(interval int) {
	y, m, d := w.base.Date()
	for offset := interval; ; offset += interval {
		start := w.at(y, m, d+offset)
		if start.After(w.until) {
			return
		}
		if !w.add(start) {
			return
		}
	}
}

func (w *walker) weekly(interval int, days []time.Weekday) {
	set := make(map[time.Weekday]bool, len(days))
	for _, wd := range days {
		if wd >= time.Sunday && wd <= time.Saturday {
			set[wd] = true
		}
	}
	if len(set) == 0 {
		set[w.base.Weekday()] = true
	}

	y, m, d := w.base.Date()
	for week := 0; ; week += 7 * interval {
		for i := 0; i < 7; i++ {
			start := w.at(y, m, d+week+i)
			if start.After(w.until) {
				return
			}
			if week == 0 && i == 0 {
				continue // the base occurrence
			}
			if set[start.Weekday()] && !w.add(start) {
				return
			}
		}
	}
}

func (w *walker) monthly(interval int, days []int) {
	set := NormalizeMonthDays(days)
	if len(set) == 0 {
		set = []int{w.base.Day()}
	}

	loc := w.base.Location()
	y, m, _ := w.base.Date()
	for step := 0; ; step += interval {
		first := time.Date(y, m+time.Month(step), 1, 0, 0, 0, 0, loc)
		if first.After(w.until) {
			return
		}
		last := utils.DaysIn(first.Year(), first.Month(), loc)
		for _, day := range set {
			// 31 in a 30-day month is skipped, never clamped or rolled over
			if day > last {
				continue
			}
			start := w.at(first.Year(), first.Month(), day)
			if !start.After(w.base) {
				continue
			}
			if start.After(w.until) {
				return
			}
			if !w.add(start) {
				return
			}
		}
	}
}

func (w *walker) yearly(interval int) {
	y, m, d := w.base.Date()
	for step := interval; ; step += interval {
		start := w.at(y+step, m, d)
		if start.After(w.until) {
			return
		}
		// Feb 29 does not exist in this year
		if start.Day() != d {
			continue
		}
		if !w.add(start) {
			return
		}
	}
}
