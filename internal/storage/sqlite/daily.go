package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/storage"
)

func (s *Store) FetchDaily(ctx context.Context, userID, date string) (models.DailyInstance, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT sections FROM daily_checklists WHERE user_id = ? AND record_date = ?",
		userID, date,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailyInstance{}, fmt.Errorf("%w: checklist %s", apperrors.ErrNotFound, date)
		}
		return models.DailyInstance{}, apperrors.Unavailable("fetch checklist", err)
	}
	return storage.DecodeDaily(date, []byte(payload))
}

func (s *Store) UpsertDaily(ctx context.Context, userID string, inst models.DailyInstance) error {
	if err := storage.ValidateInstance(inst); err != nil {
		return err
	}
	payload, err := storage.EncodeSections(inst.Sections)
	if err != nil {
		return fmt.Errorf("encode checklist %s: %w", inst.Date, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_checklists (user_id, record_date, sections, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, record_date) DO UPDATE SET
			sections = excluded.sections,
			updated_at = excluded.updated_at`,
		userID, inst.Date, string(payload), formatTime(time.Now()),
	)
	return apperrors.Unavailable("upsert checklist", err)
}

func (s *Store) ListDaily(ctx context.Context, userID string) (models.History, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT record_date, sections FROM daily_checklists WHERE user_id = ? ORDER BY record_date DESC",
		userID,
	)
	if err != nil {
		return nil, apperrors.Unavailable("list checklists", err)
	}
	defer rows.Close()

	history := make(models.History)
	for rows.Next() {
		var date, payload string
		if err := rows.Scan(&date, &payload); err != nil {
			return nil, apperrors.Unavailable("list checklists", err)
		}
		inst, err := storage.DecodeDaily(date, []byte(payload))
		if err != nil {
			logger.Warn("Skipping malformed checklist", "user", userID, "date", date, "error", err)
			continue
		}
		history[date] = inst
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("list checklists", err)
	}
	return history, nil
}
