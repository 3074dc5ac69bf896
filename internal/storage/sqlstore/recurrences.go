package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
)

const recurrenceColumns = `id, frequency, interval_count, days_of_week, days_of_month, end_date, enabled, merge_mode, auto_complete, deleted_at`

func (s *Store) AddRecurrence(rule models.Recurrence) error {
	_, err := s.db.Exec(s.q(`
		INSERT INTO recurrences (`+recurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			frequency = excluded.frequency,
			interval_count = excluded.interval_count,
			days_of_week = excluded.days_of_week,
			days_of_month = excluded.days_of_month,
			end_date = excluded.end_date,
			enabled = excluded.enabled,
			merge_mode = excluded.merge_mode,
			auto_complete = excluded.auto_complete,
			deleted_at = excluded.deleted_at`),
		rule.ID, string(rule.Frequency), rule.EffectiveInterval(),
		recurrence.FormatWeekdays(rule.DaysOfWeek), recurrence.FormatMonthDays(rule.DaysOfMonth),
		formatNullTime(rule.EndDate), boolToInt(rule.Enabled), boolToInt(rule.Merge),
		boolToInt(rule.AutoComplete), formatNullTime(rule.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save recurrence %s: %w", rule.ID, err)
	}
	return nil
}

func (s *Store) GetRecurrence(id string) (models.Recurrence, error) {
	row := s.db.QueryRow(s.q(`SELECT `+recurrenceColumns+` FROM recurrences WHERE id = ? AND deleted_at IS NULL`), id)
	r, err := scanRecurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recurrence{}, fmt.Errorf("recurrence %s: %w", id, storage.ErrNotFound)
	}
	return r, err
}

func (s *Store) GetAllRecurrences() ([]models.Recurrence, error) {
	rows, err := s.db.Query(`SELECT ` + recurrenceColumns + ` FROM recurrences WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrences: %w", err)
	}
	defer rows.Close()

	var rules []models.Recurrence
	for rows.Next() {
		r, err := scanRecurrence(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) DeleteRecurrence(id string) error {
	return s.softDelete("recurrences", id)
}

// scanRecurrence parses the stored day sets once so callers only see typed
// values.
func scanRecurrence(row scanner) (models.Recurrence, error) {
	var r models.Recurrence
	var frequency, daysOfWeek, daysOfMonth string
	var endDate, deletedAt sql.NullString
	var enabled, merge, autoComplete int

	if err := row.Scan(&r.ID, &frequency, &r.Interval, &daysOfWeek, &daysOfMonth, &endDate,
		&enabled, &merge, &autoComplete, &deletedAt); err != nil {
		return models.Recurrence{}, err
	}

	r.Frequency = models.Frequency(frequency)
	r.DaysOfWeek = recurrence.ParseWeekdays(daysOfWeek)
	r.DaysOfMonth = recurrence.ParseMonthDays(daysOfMonth)
	r.Enabled = enabled != 0
	r.Merge = merge != 0
	r.AutoComplete = autoComplete != 0

	var err error
	if r.EndDate, err = parseNullTime(endDate); err != nil {
		return models.Recurrence{}, err
	}
	if r.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Recurrence{}, err
	}
	return r, nil
}
