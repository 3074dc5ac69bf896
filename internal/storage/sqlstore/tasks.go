package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

const taskColumns = `id, title, start_at, end_at, recurrence_id, status, priority, created_at, deleted_at`

func (s *Store) AddTask(task models.Task) error {
	_, err := s.db.Exec(s.q(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			recurrence_id = excluded.recurrence_id,
			status = excluded.status,
			priority = excluded.priority,
			deleted_at = excluded.deleted_at`),
		task.ID, task.Title, formatNullTime(task.StartAt), formatNullTime(task.EndAt),
		task.RecurrenceID, string(task.Status), task.Priority, formatTime(task.CreatedAt),
		formatNullTime(task.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}
	return nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(s.q(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted_at IS NULL`), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL ORDER BY start_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) DeleteTask(id string) error {
	return s.softDelete("tasks", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var status, createdAt string
	var startAt, endAt, deletedAt sql.NullString

	if err := row.Scan(&t.ID, &t.Title, &startAt, &endAt, &t.RecurrenceID, &status, &t.Priority, &createdAt, &deletedAt); err != nil {
		return models.Task{}, err
	}
	t.Status = models.TaskStatus(status)

	var err error
	if t.StartAt, err = parseNullTime(startAt); err != nil {
		return models.Task{}, err
	}
	if t.EndAt, err = parseNullTime(endAt); err != nil {
		return models.Task{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if t.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Task{}, err
	}
	return t, nil
}
