package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

const userColumns = `id, goal_days, email, display_name, streak_days, longest_streak,
	last_checklist_date, total_checklists, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user models.UserProfile, passwordHash string) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, password_hash, goal_days, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		user.ID, passwordHash, user.GoalDays,
		nullString(user.Email), nullString(user.DisplayName),
		formatTime(user.CreatedAt), formatTime(now),
	)
	if err != nil {
		return apperrors.Unavailable("create user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("create user", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrUserExists, user.ID)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, _, err := scanUser(row, false)
	return user, err
}

func (s *Store) GetCredentials(ctx context.Context, id string) (models.UserProfile, string, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+", password_hash FROM users WHERE id = ?", id)
	return scanUser(row, true)
}

func (s *Store) UpdateStreakMirror(ctx context.Context, id string, mirror models.StreakMirror) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET streak_days = ?, longest_streak = ?, last_checklist_date = ?, total_checklists = ?, updated_at = ?
		WHERE id = ?`,
		mirror.StreakDays, mirror.LongestStreak, nullString(mirror.LastChecklistDate),
		mirror.TotalChecklists, formatTime(time.Now()), id,
	)
	if err != nil {
		return apperrors.Unavailable("update streak", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func scanUser(row *sql.Row, withHash bool) (models.UserProfile, string, error) {
	var (
		user                 models.UserProfile
		email, name, lastDay sql.NullString
		createdAt, updatedAt string
		hash                 string
	)
	dest := []interface{}{
		&user.ID, &user.GoalDays, &email, &name, &user.StreakDays, &user.LongestStreak,
		&lastDay, &user.TotalChecklists, &createdAt, &updatedAt,
	}
	if withHash {
		dest = append(dest, &hash)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserProfile{}, "", apperrors.ErrNotFound
		}
		return models.UserProfile{}, "", apperrors.Unavailable("get user", err)
	}

	user.Email = email.String
	user.DisplayName = name.String
	user.LastChecklistDate = lastDay.String

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.UserProfile{}, "", fmt.Errorf("%w: user %s created_at: %v", apperrors.ErrMalformed, user.ID, err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.UserProfile{}, "", fmt.Errorf("%w: user %s updated_at: %v", apperrors.ErrMalformed, user.ID, err)
	}
	return user, hash, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
