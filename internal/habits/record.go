package habits

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/storage"
)

// record is the completion state of one recurrence: a day-key set and the
// instant (epoch ms) each day was completed. The day set is authoritative;
// a stamp without its day is ignored.
type record struct {
	days  map[string]struct{}
	times map[string]int64
}

func newRecord() record {
	return record{
		days:  make(map[string]struct{}),
		times: make(map[string]int64),
	}
}

func (r record) has(day string) bool {
	_, ok := r.days[day]
	return ok
}

func (r record) mark(day string, ms int64) bool {
	if r.has(day) {
		return false
	}
	r.days[day] = struct{}{}
	r.times[day] = ms
	return true
}

func (r record) unmark(day string) bool {
	if !r.has(day) {
		return false
	}
	delete(r.days, day)
	delete(r.times, day)
	return true
}

func (r record) sortedDays() []string {
	days := make([]string, 0, len(r.days))
	for d := range r.days {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

func daysKey(id string) string {
	return constants.HabitKeyPrefix + id + constants.HabitDaysSuffix
}

func timesKey(id string) string {
	return constants.HabitKeyPrefix + id + constants.HabitTimesSuffix
}

// loadRecord reads both keys. A storage error is returned; an unparseable
// value is logged and treated as empty.
func loadRecord(kv storage.KV, id string) (record, error) {
	rec := newRecord()

	raw, found, err := kv.Get(daysKey(id))
	if err != nil {
		return rec, fmt.Errorf("failed to read completion days for %s: %w", id, err)
	}
	if found && raw != "" {
		var days []string
		if err := json.Unmarshal([]byte(raw), &days); err != nil {
			logger.Warn("Discarding unreadable completion days", "recurrence", id, "error", err)
		}
		for _, d := range days {
			rec.days[d] = struct{}{}
		}
	}

	raw, found, err = kv.Get(timesKey(id))
	if err != nil {
		return rec, fmt.Errorf("failed to read completion times for %s: %w", id, err)
	}
	if found && raw != "" {
		var times map[string]int64
		if err := json.Unmarshal([]byte(raw), &times); err != nil {
			logger.Warn("Discarding unreadable completion times", "recurrence", id, "error", err)
		}
		for d, ms := range times {
			rec.times[d] = ms
		}
	}

	return rec, nil
}

// saveRecord writes the time map before the day set so a failure between
// the two never leaves a marked day without its stamp.
func saveRecord(kv storage.KV, id string, rec record) error {
	times := make(map[string]int64, len(rec.days))
	for d := range rec.days {
		if ms, ok := rec.times[d]; ok {
			times[d] = ms
		}
	}
	data, err := json.Marshal(times)
	if err != nil {
		return fmt.Errorf("failed to encode completion times: %w", err)
	}
	if err := kv.Set(timesKey(id), string(data)); err != nil {
		return fmt.Errorf("failed to write completion times for %s: %w", id, err)
	}

	data, err = json.Marshal(rec.sortedDays())
	if err != nil {
		return fmt.Errorf("failed to encode completion days: %w", err)
	}
	if err := kv.Set(daysKey(id), string(data)); err != nil {
		return fmt.Errorf("failed to write completion days for %s: %w", id, err)
	}
	return nil
}

// CopyRecord copies the completion record of id from src to dst. It
// reports false when src holds no completions for id.
func CopyRecord(src, dst storage.KV, id string) (bool, error) {
	rec, err := loadRecord(src, id)
	if err != nil {
		return false, err
	}
	if len(rec.days) == 0 {
		return false, nil
	}
	if err := saveRecord(dst, id, rec); err != nil {
		return false, err
	}
	return true, nil
}
