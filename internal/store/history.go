package store

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/smarttranslate/internal"
)

func (s *Store) InsertHistory(ctx context.Context, rec internal.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, user_id, original, translated, lang, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Original, rec.Translated, rec.Lang, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

// ListHistory returns the user's records newest first. Records sharing a
// timestamp come back in reverse insertion order.
func (s *Store) ListHistory(ctx context.Context, userID string) ([]internal.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, original, translated, lang, created_at FROM history WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	records := []internal.HistoryRecord{}
	for rows.Next() {
		var r internal.HistoryRecord
		var createdAt time.Time
		if err := rows.Scan(&r.ID, &r.UserID, &r.Original, &r.Translated, &r.Lang, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = createdAt.UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteHistory removes one record if it belongs to userID and reports
// whether anything was deleted.
func (s *Store) DeleteHistory(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteAllHistory(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}
