package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/progress"
	"github.com/julianstephens/dragonlog/internal/session"
)

// dayLoadedMsg carries a day's checklist and the refreshed dragon state
type dayLoadedMsg struct {
	date    string
	inst    models.DailyInstance
	proj    progress.Projection
	longest int
	status  string
	err     error
}

type activityLoadedMsg struct {
	entries []models.LogEntry
	err     error
}

type templateSavedMsg struct {
	err error
}

func snapshot(sess *session.Session, date string, inst models.DailyInstance, status string) dayLoadedMsg {
	msg := dayLoadedMsg{date: date, inst: inst, status: status}
	var err error
	if msg.proj, err = sess.Progress(context.Background()); err != nil {
		msg.err = err
		return msg
	}
	if msg.longest, err = sess.LongestStreak(); err != nil {
		msg.err = err
	}
	return msg
}

func loadDay(sess *session.Session, date string) tea.Cmd {
	return func() tea.Msg {
		inst, err := sess.EnsureDailyChecklist(context.Background(), date)
		if err != nil {
			return dayLoadedMsg{date: date, err: err}
		}
		return snapshot(sess, date, inst, "")
	}
}

func toggleItem(sess *session.Session, date, sectionID, itemID string) tea.Cmd {
	return func() tea.Msg {
		inst, _, err := sess.ToggleItem(context.Background(), date, sectionID, itemID)
		if err != nil {
			return dayLoadedMsg{date: date, err: err}
		}
		status := ""
		if inst.IsComplete() {
			status = "All done for " + date + "!"
		}
		return snapshot(sess, date, inst, status)
	}
}

func loadActivity(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		entries, err := sess.Logs(context.Background(), activityLimit)
		return activityLoadedMsg{entries: entries, err: err}
	}
}

func addTemplateItem(sess *session.Session, section, label string) tea.Cmd {
	return func() tea.Msg {
		_, err := sess.AddTemplateItem(context.Background(), section, label)
		return templateSavedMsg{err: err}
	}
}
