package storage

import (
	"context"

	"github.com/julianstephens/dragonlog/internal/models"
)

// Provider is implemented by every storage backend
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error

	// Users
	// CreateUser returns errors.ErrUserExists when the id is taken
	CreateUser(ctx context.Context, user models.UserProfile, passwordHash string) error
	// GetUser returns errors.ErrNotFound for unknown ids
	GetUser(ctx context.Context, id string) (models.UserProfile, error)
	// GetCredentials returns the profile with its stored password hash
	GetCredentials(ctx context.Context, id string) (models.UserProfile, string, error)
	UpdateStreakMirror(ctx context.Context, id string, mirror models.StreakMirror) error

	// Templates
	// LoadTemplate returns an empty template when the user has none
	LoadTemplate(ctx context.Context, userID string) (models.Template, error)
	// SaveTemplate assigns ids where missing, clears checked flags and
	// replaces the stored template wholesale
	SaveTemplate(ctx context.Context, userID string, tmpl models.Template) (models.Template, error)

	// Daily checklists
	// FetchDaily returns errors.ErrNotFound when absent and errors.ErrMalformed
	// when the stored record fails shape checks
	FetchDaily(ctx context.Context, userID, date string) (models.DailyInstance, error)
	// UpsertDaily writes the checklist for (userID, inst.Date); last write wins
	UpsertDaily(ctx context.Context, userID string, inst models.DailyInstance) error
	// ListDaily returns every well-formed checklist for the user
	ListDaily(ctx context.Context, userID string) (models.History, error)

	// Statistics
	UpsertDayStatistics(ctx context.Context, userID string, stats models.DayStatistics) error
	ListDayStatistics(ctx context.Context, userID string, limit int) ([]models.DayStatistics, error)

	// Activity log
	AppendLog(ctx context.Context, entry models.LogEntry) error
	// ListLogs returns entries newest first; an empty userID lists every user
	ListLogs(ctx context.Context, userID string, limit int) ([]models.LogEntry, error)

	// Utils
	GetConfigPath() string
}
