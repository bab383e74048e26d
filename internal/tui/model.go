// Package tui is the interactive checklist: the dragon card above the day's
// checklist, with keyboard toggling and day-by-day navigation.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dragonlog/internal/session"
	"github.com/julianstephens/dragonlog/internal/tui/components/activity"
	"github.com/julianstephens/dragonlog/internal/tui/components/checklist"
	"github.com/julianstephens/dragonlog/internal/tui/components/dragon"
)

type viewState int

const (
	stateChecklist viewState = iota
	stateActivity
	stateAddItem
)

// activityLimit is how many log entries the activity tab shows
const activityLimit = 200

type addItemForm struct {
	Section string
	Label   string
}

type Model struct {
	sess      *session.Session
	state     viewState
	keys      KeyMap
	help      help.Model
	date      string
	checklist checklist.Model
	dragon    dragon.Model
	activity  activity.Model
	form      *huh.Form
	addForm   *addItemForm
	status    string
	err       string
	quitting  bool
	width     int
	height    int
}

// NewModel returns the TUI for a session that already has an active user
func NewModel(sess *session.Session) Model {
	return Model{
		sess:      sess,
		state:     stateChecklist,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		date:      sess.Today(),
		checklist: checklist.New(),
		dragon:    dragon.New(),
		activity:  activity.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return loadDay(m.sess, m.date)
}

// Date returns the day being shown
func (m Model) Date() string {
	return m.date
}
