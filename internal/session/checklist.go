package session

import (
	"context"
	"fmt"

	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/daily"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/metrics"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/progress"
	"github.com/julianstephens/dragonlog/internal/streak"
	"github.com/julianstephens/dragonlog/internal/utils"
)

// EnsureDailyChecklist returns the checklist for date, materializing it from
// the template when absent and reconciling it when date is today.
func (s *Session) EnsureDailyChecklist(ctx context.Context, date string) (models.DailyInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.ensureLocked(ctx, date)
	if err != nil {
		return models.DailyInstance{}, err
	}
	return inst.Clone(), nil
}

func (s *Session) ensureLocked(ctx context.Context, date string) (models.DailyInstance, error) {
	uid, err := s.requireUser()
	if err != nil {
		return models.DailyInstance{}, err
	}
	if !utils.ValidateDate(date) {
		return models.DailyInstance{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrInvalidInput, date)
	}
	today := s.Today()
	if date > today {
		return models.DailyInstance{}, fmt.Errorf("%w: %s is in the future", apperrors.ErrInvalidInput, date)
	}
	// an empty template would make every new day vacuously complete
	if s.template.IsEmpty() {
		if err := s.refreshTemplateLocked(ctx, uid); err != nil {
			return models.DailyInstance{}, err
		}
	}

	var cached *models.DailyInstance
	if c, ok := s.history[date]; ok {
		cached = &c
	}

	inst, outcome, err := s.instantiator.Ensure(ctx, uid, s.template, date, today, cached)
	if err != nil {
		return models.DailyInstance{}, err
	}

	switch outcome {
	case daily.Materialized:
		metrics.TrackChecklistOperation("materialized")
		s.journal.Info(ctx, uid, constants.ActionChecklistInit, fmt.Sprintf("created checklist for %s", date))
	case daily.Reconciled:
		metrics.TrackChecklistOperation("reconciled")
		s.journal.Info(ctx, uid, constants.ActionChecklistReconcile,
			fmt.Sprintf("updated checklist for %s from template (%s)", date, s.instantiator.Policy()))
	}

	s.history[date] = inst
	return inst, nil
}

// ToggleItem flips one item on date's checklist. The new checklist is
// published to the in-memory history before it is persisted; if the write
// fails the previous checklist is restored and the error returned. The bool
// reports whether an item matched.
func (s *Session) ToggleItem(ctx context.Context, date, sectionID, itemID string) (models.DailyInstance, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.ensureLocked(ctx, date)
	if err != nil {
		return models.DailyInstance{}, false, err
	}
	uid := s.user.ID

	next, changed, err := daily.ToggleInHistory(s.history, date, sectionID, itemID)
	if err != nil {
		return models.DailyInstance{}, false, err
	}
	if !changed {
		return prev.Clone(), false, nil
	}

	s.history[date] = next
	if err := s.store.UpsertDaily(ctx, uid, next); err != nil {
		s.history[date] = prev
		metrics.TrackChecklistOperation("toggle_failed")
		return models.DailyInstance{}, false, fmt.Errorf("save checklist %s: %w", date, err)
	}
	metrics.TrackChecklistOperation("toggle")

	s.afterToggleLocked(ctx, uid, next, sectionID, itemID)
	return next.Clone(), true, nil
}

// afterToggleLocked refreshes the denormalized mirrors. Their failures are
// logged and never undo the toggle.
func (s *Session) afterToggleLocked(ctx context.Context, uid string, inst models.DailyInstance, sectionID, itemID string) {
	mirror := streak.Mirror(s.history, s.Today(), s.user.LongestStreak)
	if err := s.store.UpdateStreakMirror(ctx, uid, mirror); err != nil {
		logger.Warn("Failed to update streak mirror", "user", uid, "error", err)
	} else {
		s.user.StreakDays = mirror.StreakDays
		s.user.LongestStreak = mirror.LongestStreak
		s.user.LastChecklistDate = mirror.LastChecklistDate
		s.user.TotalChecklists = mirror.TotalChecklists
	}

	if err := s.store.UpsertDayStatistics(ctx, uid, streak.Summarize(inst)); err != nil {
		logger.Warn("Failed to update day statistics", "user", uid, "date", inst.Date, "error", err)
	}

	state := "unchecked"
	if si := models.FindSection(inst.Sections, sectionID); si >= 0 {
		sec := inst.Sections[si]
		if ii := sec.FindItem(itemID); ii >= 0 {
			if sec.Items[ii].Checked {
				state = "checked"
			}
			s.journal.Info(ctx, uid, constants.ActionChecklistToggle,
				fmt.Sprintf("%s %q on %s", state, sec.Items[ii].Label, inst.Date))
		}
	}
}

// LoadHistory replaces the in-memory history with what the store holds
func (s *Session) LoadHistory(ctx context.Context) (models.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := s.requireUser()
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListDaily(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	s.history = history
	return history.Clone(), nil
}

// History returns a copy of the in-memory history
func (s *Session) History() (models.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return nil, err
	}
	return s.history.Clone(), nil
}

// Streak computes the current streak from history as of today
func (s *Session) Streak(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return 0, err
	}
	return streak.Compute(s.history, s.Today()), nil
}

// LongestStreak returns the best run in loaded history or the stored mirror, whichever is larger
func (s *Session) LongestStreak() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return 0, err
	}
	return max(streak.Longest(s.history), s.user.LongestStreak), nil
}

// Progress projects the current streak onto the user's goal
func (s *Session) Progress(_ context.Context) (progress.Projection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return progress.Projection{}, err
	}
	return progress.Project(streak.Compute(s.history, s.Today()), s.user.GoalDays), nil
}

// Logs lists the user's activity entries, newest first
func (s *Session) Logs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	s.mu.Lock()
	uid, err := s.requireUser()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultLogLimit
	}
	return s.store.ListLogs(ctx, uid, limit)
}

// Statistics lists per-day statistics, newest first
func (s *Session) Statistics(ctx context.Context, limit int) ([]models.DayStatistics, error) {
	s.mu.Lock()
	uid, err := s.requireUser()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.store.ListDayStatistics(ctx, uid, limit)
}
