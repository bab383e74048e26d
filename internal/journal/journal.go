// Package journal records user-visible activity entries. Recording never
// fails the operation that triggered it.
package journal

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/models"
)

// Sink is where entries are persisted
type Sink interface {
	AppendLog(ctx context.Context, entry models.LogEntry) error
}

// Recorder writes entries to the diagnostic log and to a Sink
type Recorder struct {
	sink Sink
	now  func() time.Time
}

// New returns a Recorder. A nil sink only logs.
func New(sink Sink) *Recorder {
	return &Recorder{sink: sink, now: time.Now}
}

// WithClock returns a copy of r using now for timestamps
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	cp := *r
	cp.now = now
	return &cp
}

// Record appends an entry for userID (empty for system events)
func (r *Recorder) Record(ctx context.Context, userID, action, message string, level constants.LogLevel) {
	if r == nil {
		return
	}
	if level == "" {
		level = constants.LogLevelInfo
	}

	l := logger.Named("journal")
	keyvals := []interface{}{"action", action, "user", userID}
	switch level {
	case constants.LogLevelError:
		l.Error(message, keyvals...)
	case constants.LogLevelWarn:
		l.Warn(message, keyvals...)
	default:
		l.Info(message, keyvals...)
	}

	if r.sink == nil {
		return
	}

	entry := models.LogEntry{
		ID:        uuid.NewString(),
		Level:     level,
		Action:    action,
		Message:   message,
		CreatedAt: r.now().UTC(),
	}
	if userID != "" {
		uid := userID
		entry.UserID = &uid
	}

	if err := r.sink.AppendLog(ctx, entry); err != nil {
		l.Log(log.WarnLevel, "failed to persist activity log entry", "action", action, "error", err)
	}
}

// Info records an info-level entry
func (r *Recorder) Info(ctx context.Context, userID, action, message string) {
	r.Record(ctx, userID, action, message, constants.LogLevelInfo)
}
