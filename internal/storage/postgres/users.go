package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

const userColumns = `id, goal_days, email, display_name, streak_days, longest_streak,
	to_char(last_checklist_date, 'YYYY-MM-DD'), total_checklists, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user models.UserProfile, passwordHash string) error {
	var createdAt interface{}
	if !user.CreatedAt.IsZero() {
		createdAt = user.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, password_hash, goal_days, email, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))`,
		user.ID, passwordHash, user.GoalDays,
		nullString(user.Email), nullString(user.DisplayName), createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrUserExists, user.ID)
		}
		return apperrors.Unavailable("create user", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, _, err := scanUser(row, false)
	return user, err
}

func (s *Store) GetCredentials(ctx context.Context, id string) (models.UserProfile, string, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+", password_hash FROM users WHERE id = $1", id)
	return scanUser(row, true)
}

func (s *Store) UpdateStreakMirror(ctx context.Context, id string, mirror models.StreakMirror) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET streak_days = $1, longest_streak = $2, last_checklist_date = $3, total_checklists = $4, updated_at = now()
		WHERE id = $5`,
		mirror.StreakDays, mirror.LongestStreak, nullString(mirror.LastChecklistDate), mirror.TotalChecklists, id,
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
		hash                 string
	)
	dest := []interface{}{
		&user.ID, &user.GoalDays, &email, &name, &user.StreakDays, &user.LongestStreak,
		&lastDay, &user.TotalChecklists, &user.CreatedAt, &user.UpdatedAt,
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
	return user, hash, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
