package models

import (
	"time"

	"github.com/julianstephens/dragonlog/internal/constants"
)

// UserProfile is an account plus its denormalized streak mirror.
// StreakDays, LongestStreak, LastChecklistDate and TotalChecklists are
// written after each toggle for display only; the streak is always
// recomputed from history.
type UserProfile struct {
	ID                string    `json:"id"`
	GoalDays          int       `json:"goal_days"`
	Email             string    `json:"email,omitempty"`
	DisplayName       string    `json:"display_name,omitempty"`
	StreakDays        int       `json:"streak_days"`
	LongestStreak     int       `json:"longest_streak"`
	LastChecklistDate string    `json:"last_checklist_date,omitempty"`
	TotalChecklists   int       `json:"total_checklists"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the user id
func (u UserProfile) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// StreakMirror is the cached streak summary stored on the user row
type StreakMirror struct {
	StreakDays        int
	LongestStreak     int
	LastChecklistDate string
	TotalChecklists   int
}

// LogEntry is one row of the user-visible activity log
type LogEntry struct {
	ID        string             `json:"id"`
	UserID    *string            `json:"user_id,omitempty"`
	Level     constants.LogLevel `json:"level"`
	Action    string             `json:"action"`
	Message   string             `json:"message"`
	CreatedAt time.Time          `json:"created_at"`
}

// DayStatistics summarizes one day's checklist
type DayStatistics struct {
	Date           string  `json:"date"`
	ItemsTotal     int     `json:"items_total"`
	ItemsChecked   int     `json:"items_checked"`
	CompletionRate float64 `json:"completion_rate"`
	Completed      bool    `json:"completed"`
}

// SeedSection is a template seed definition: a title and the item labels under it
type SeedSection struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
}
