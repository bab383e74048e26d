package postgres

import (
	"context"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

func (s *Store) UpsertDayStatistics(ctx context.Context, userID string, stats models.DayStatistics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_statistics (user_id, stat_date, items_total, items_checked, completion_rate, completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id, stat_date) DO UPDATE SET
			items_total = EXCLUDED.items_total,
			items_checked = EXCLUDED.items_checked,
			completion_rate = EXCLUDED.completion_rate,
			completed = EXCLUDED.completed,
			updated_at = EXCLUDED.updated_at`,
		userID, stats.Date, stats.ItemsTotal, stats.ItemsChecked, stats.CompletionRate, stats.Completed,
	)
	return apperrors.Unavailable("upsert statistics", err)
}

func (s *Store) ListDayStatistics(ctx context.Context, userID string, limit int) ([]models.DayStatistics, error) {
	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(stat_date, 'YYYY-MM-DD'), items_total, items_checked, completion_rate, completed
		FROM user_statistics
		WHERE user_id = $1
		ORDER BY stat_date DESC
		LIMIT $2`, userID, limitArg)
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
