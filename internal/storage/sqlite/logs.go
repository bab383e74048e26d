package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dragonlog/internal/constants"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

func (s *Store) AppendLog(ctx context.Context, entry models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Level == "" {
		entry.Level = constants.LogLevelInfo
	}

	var userID sql.NullString
	if entry.UserID != nil {
		userID = sql.NullString{String: *entry.UserID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO system_logs (id, user_id, level, action, message, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, userID, string(entry.Level), entry.Action, entry.Message, formatTime(entry.CreatedAt),
	)
	return apperrors.Unavailable("append log", err)
}

func (s *Store) ListLogs(ctx context.Context, userID string, limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = constants.DefaultLogLimit
	}

	query := "SELECT id, user_id, level, action, message, created_at FROM system_logs"
	args := []interface{}{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable("list logs", err)
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var (
			entry     models.LogEntry
			uid       sql.NullString
			level     string
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &uid, &level, &entry.Action, &entry.Message, &createdAt); err != nil {
			return nil, apperrors.Unavailable("list logs", err)
		}
		if uid.Valid {
			v := uid.String
			entry.UserID = &v
		}
		entry.Level = constants.LogLevel(level)
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("%w: log %s created_at: %v", apperrors.ErrMalformed, entry.ID, err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("list logs", err)
	}
	return out, nil
}
