// Package habits tracks per-recurrence completion of calendar days.
//
// Storage is best effort. Mutators never fail outright: they report what
// changed in a Result whose Err carries the storage failure, if any, and a
// failed read or write leaves the persisted state as it was. Queries treat
// an unreadable record as "no completions".
package habits

import (
	"sync"
	"time"

	"github.com/julianstephens/cadence/internal/deadline"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

// Result reports the outcome of a mutation. Changed counts days whose
// state flipped; Err is the swallowed storage failure, if any.
type Result struct {
	Changed int
	Err     error
}

// OK reports whether the mutation reached storage.
func (r Result) OK() bool {
	return r.Err == nil
}

type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	loc       *time.Location
	now       func() time.Time
	observers *Observers
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the location day keys are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		loc:       time.Local,
		now:       time.Now,
		observers: NewObservers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordID returns the id completions of task are stored under: its
// recurrence, or the task itself when it does not repeat.
func RecordID(task models.Task) string {
	if task.RecurrenceID != "" {
		return task.RecurrenceID
	}
	return task.ID
}

// Subscribe registers fn for changes to recurrenceID.
func (s *Store) Subscribe(recurrenceID string, fn Listener) (unsubscribe func()) {
	return s.observers.Subscribe(recurrenceID, fn)
}

// stamp is the current instant at millisecond precision, the precision
// completion times are stored at.
func (s *Store) stamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

func (s *Store) dayKey(t time.Time) string {
	return utils.DayKey(t, s.loc)
}

// mutate runs fn on the current record and persists it when fn reports
// changed days. Observers are notified after the lock is released.
func (s *Store) mutate(id string, marked bool, fn func(rec record) []string) Result {
	s.mu.Lock()
	rec, err := loadRecord(s.kv, id)
	if err != nil {
		s.mu.Unlock()
		logger.Warn("Completion update skipped", "recurrence", id, "error", err)
		return Result{Err: err}
	}

	changed := fn(rec)
	if len(changed) == 0 {
		s.mu.Unlock()
		return Result{}
	}

	if err := saveRecord(s.kv, id, rec); err != nil {
		s.mu.Unlock()
		logger.Warn("Completion update not saved", "recurrence", id, "error", err)
		return Result{Err: err}
	}
	s.mu.Unlock()

	logger.Debug("Completion updated", "recurrence", id, "marked", marked, "days", len(changed))
	s.observers.Notify(Event{RecurrenceID: id, Days: changed, Marked: marked})
	return Result{Changed: len(changed)}
}

// read loads a record for a query, degrading to empty on failure.
func (s *Store) read(id string) record {
	rec, err := loadRecord(s.kv, id)
	if err != nil {
		logger.Warn("Completion record unavailable", "recurrence", id, "error", err)
		return newRecord()
	}
	return rec
}

// MarkDay marks the calendar day of date complete, stamped now. Marking a
// marked day changes nothing.
func (s *Store) MarkDay(recurrenceID string, date time.Time) Result {
	return s.markDayAt(recurrenceID, date, s.stamp())
}

func (s *Store) markDayAt(recurrenceID string, date, at time.Time) Result {
	day := s.dayKey(date)
	ms := at.UnixMilli()
	return s.mutate(recurrenceID, true, func(rec record) []string {
		if rec.mark(day, ms) {
			return []string{day}
		}
		return nil
	})
}

// UnmarkDay clears the calendar day of date and its stamp.
func (s *Store) UnmarkDay(recurrenceID string, date time.Time) Result {
	day := s.dayKey(date)
	return s.mutate(recurrenceID, false, func(rec record) []string {
		if rec.unmark(day) {
			return []string{day}
		}
		return nil
	})
}

// MarkRange marks every calendar day in [from, to]. When task and rule are
// given, a day whose occurrence has already ended is stamped with that end;
// every other day is stamped now. Days already marked keep their stamp.
func (s *Store) MarkRange(recurrenceID string, from, to time.Time, task *models.Task, rule *models.Recurrence) Result {
	now := s.stamp()
	ends := s.occurrenceEnds(task, rule)
	days := s.daysBetween(from, to)

	return s.mutate(recurrenceID, true, func(rec record) []string {
		var changed []string
		for _, day := range days {
			at := now
			if end, ok := ends[day]; ok && end.Before(now) {
				at = end
			}
			if rec.mark(day, at.UnixMilli()) {
				changed = append(changed, day)
			}
		}
		return changed
	})
}

// UnmarkRange clears every calendar day in [from, to].
func (s *Store) UnmarkRange(recurrenceID string, from, to time.Time) Result {
	days := s.daysBetween(from, to)
	return s.mutate(recurrenceID, false, func(rec record) []string {
		var changed []string
		for _, day := range days {
			if rec.unmark(day) {
				changed = append(changed, day)
			}
		}
		return changed
	})
}

// IsDoneOnDate reports whether the calendar day of date is marked.
func (s *Store) IsDoneOnDate(recurrenceID string, date time.Time) bool {
	return s.read(recurrenceID).has(s.dayKey(date))
}

// CompletedAt returns the recorded completion instant for the calendar day
// of date.
func (s *Store) CompletedAt(recurrenceID string, date time.Time) (time.Time, bool) {
	rec := s.read(recurrenceID)
	day := s.dayKey(date)
	if !rec.has(day) {
		return time.Time{}, false
	}
	ms, ok := rec.times[day]
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).In(s.loc), true
}

// MarkedDays returns every marked day key, ascending.
func (s *Store) MarkedDays(recurrenceID string) []string {
	return s.read(recurrenceID).sortedDays()
}

// MarkOccurrence marks the day of occ and returns the classification of
// its stored completion against the occurrence end. The clock is read once
// and that instant is both stored and classified. An already marked day
// keeps its original stamp, so the snapshot matches Classify.
func (s *Store) MarkOccurrence(recurrenceID string, occ models.Occurrence) (Result, deadline.Classification) {
	at := s.stamp()
	res := s.markDayAt(recurrenceID, occ.StartAt, at)
	if res.Changed == 0 {
		if stored, ok := s.CompletedAt(recurrenceID, occ.StartAt); ok {
			at = stored
		}
	}
	return res, deadline.Classify(occ.EndAt, at)
}

// Classify recomputes the classification of occ from its stored
// completion instant. ok is false when the day is not marked.
func (s *Store) Classify(recurrenceID string, occ models.Occurrence) (deadline.Classification, bool) {
	at, ok := s.CompletedAt(recurrenceID, occ.StartAt)
	if !ok {
		return deadline.Classification{}, false
	}
	return deadline.Classify(occ.EndAt, at), true
}

// AutoCompletePastIfEnabled marks ended occurrences when rule has
// AutoComplete set. Without merge each ended occurrence is stamped with its
// own end. With merge the whole span is range-marked once the final
// occurrence has ended.
func (s *Store) AutoCompletePastIfEnabled(task models.Task, rule *models.Recurrence) Result {
	if rule == nil || !rule.AutoComplete {
		return Result{}
	}
	occs := occurrences(task, rule)
	if len(occs) == 0 {
		return Result{}
	}

	id := RecordID(task)
	now := s.stamp()

	if rule.Merge {
		last := occs[len(occs)-1]
		if last.EndAt.After(now) {
			return Result{}
		}
		return s.MarkRange(id, occs[0].StartAt, last.StartAt, &task, rule)
	}

	return s.mutate(id, true, func(rec record) []string {
		var changed []string
		for _, occ := range occs {
			if occ.EndAt.After(now) {
				break
			}
			day := s.dayKey(occ.StartAt)
			if rec.mark(day, occ.EndAt.UnixMilli()) {
				changed = append(changed, day)
			}
		}
		return changed
	})
}

// occurrences expands task through rule. A task without a start has none.
func occurrences(task models.Task, rule *models.Recurrence) []models.Occurrence {
	start, end, ok := task.Bounds()
	if !ok {
		return nil
	}
	return recurrence.Generate(start, end, rule)
}

// occurrenceEnds maps each planned day to its first occurrence's end.
func (s *Store) occurrenceEnds(task *models.Task, rule *models.Recurrence) map[string]time.Time {
	if task == nil || rule == nil {
		return nil
	}
	ends := make(map[string]time.Time)
	for _, occ := range occurrences(*task, rule) {
		day := s.dayKey(occ.StartAt)
		if _, ok := ends[day]; !ok {
			ends[day] = occ.EndAt
		}
	}
	return ends
}

// daysBetween lists the day keys from the day of from through the day of
// to. Reversed bounds are swapped.
func (s *Store) daysBetween(from, to time.Time) []string {
	from, to = from.In(s.loc), to.In(s.loc)
	if to.Before(from) {
		from, to = to, from
	}

	last := s.dayKey(to)
	var days []string
	for d := utils.StartOfDay(from); ; d = d.AddDate(0, 0, 1) {
		key := s.dayKey(d)
		days = append(days, key)
		if key >= last {
			break
		}
	}
	return days
}
