package sqlite

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

func (s *Store) UpsertDayStatistics(ctx context.Context, userID string, stats models.DayStatistics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_statistics (user_id, stat_date, items_total, items_checked, completion_rate, completed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, stat_date) DO UPDATE SET
			items_total = excluded.items_total,
			items_checked = excluded.items_checked,
			completion_rate = excluded.completion_rate,
			completed = excluded.completed,
			updated_at = excluded.updated_at`,
		userID, stats.Date, stats.ItemsTotal, stats.ItemsChecked, stats.CompletionRate,
		stats.Completed, formatTime(time.Now()),
	)
	return apperrors.Unavailable("upsert statistics", err)
}

func (s *Store) ListDayStatistics(ctx context.Context, userID string, limit int) ([]models.DayStatistics, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT stat_date, items_total, items_checked, completion_rate, completed
		FROM user_statistics
		WHERE user_id = ?
		ORDER BY stat_date DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, apperrors.Unavailable("list statistics", err)
	}
	defer rows.Close()

	var out []models.DayStatistics
	for rows.Next() {
		var st models.DayStatistics
		if err := rows.Scan(&st.Date, &st.ItemsTotal, &st.ItemsChecked, &st.CompletionRate, &st.Completed); err != nil {
			return nil, apperrors.Unavailable("list statistics", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("list statistics", err)
	}
	return out, nil
}
