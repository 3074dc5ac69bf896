package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
)

func (s *Store) AddFixedBlock(block models.FixedBlock) error {
	_, err := s.db.Exec(s.q(`
		INSERT INTO fixed_blocks (id, title, start_at, end_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			deleted_at = excluded.deleted_at`),
		block.ID, block.Title, formatTime(block.StartAt), formatTime(block.EndAt), formatNullTime(block.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save fixed block %s: %w", block.ID, err)
	}
	return nil
}

func (s *Store) GetAllFixedBlocks() ([]models.FixedBlock, error) {
	rows, err := s.db.Query(`SELECT id, title, start_at, end_at, deleted_at FROM fixed_blocks WHERE deleted_at IS NULL ORDER BY start_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.FixedBlock
	for rows.Next() {
		var b models.FixedBlock
		var startAt, endAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &startAt, &endAt, &deletedAt); err != nil {
			return nil, err
		}
		if b.StartAt, err = parseTime(startAt); err != nil {
			return nil, err
		}
		if b.EndAt, err = parseTime(endAt); err != nil {
			return nil, err
		}
		if b.DeletedAt, err = parseNullTime(deletedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *Store) DeleteFixedBlock(id string) error {
	return s.softDelete("fixed_blocks", id)
}
