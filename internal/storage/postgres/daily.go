package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/storage"
)

func (s *Store) FetchDaily(ctx context.Context, userID, date string) (models.DailyInstance, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT sections FROM daily_checklists WHERE user_id = $1 AND record_date = $2",
		userID, date,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailyInstance{}, fmt.Errorf("%w: checklist %s", apperrors.ErrNotFound, date)
		}
		return models.DailyInstance{}, apperrors.Unavailable("fetch checklist", err)
	}
	return storage.DecodeDaily(date, payload)
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
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, record_date) DO UPDATE SET
			sections = EXCLUDED.sections,
			updated_at = EXCLUDED.updated_at`,
		userID, inst.Date, string(payload),
	)
	return apperrors.Unavailable("upsert checklist", err)
}

func (s *Store) ListDaily(ctx context.Context, userID string) (models.History, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(record_date, 'YYYY-MM-DD'), sections
		FROM daily_checklists
		WHERE user_id = $1
		ORDER BY record_date DESC`, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list checklists", err)
	}
	defer rows.Close()

	history := make(models.History)
	for rows.Next() {
		var date string
		var payload []byte
		if err := rows.Scan(&date, &payload); err != nil {
			return nil, apperrors.Unavailable("list checklists", err)
		}
		inst, err := storage.DecodeDaily(date, payload)
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
