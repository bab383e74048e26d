package activity

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Width(22)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Model is a scrollable activity log
type Model struct {
	viewport viewport.Model
	entries  []models.LogEntry
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return "No activity yet."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetEntries(entries []models.LogEntry) {
	m.entries = entries
	m.render()
	m.viewport.GotoTop()
}

func (m *Model) render() {
	var b strings.Builder
	for _, e := range m.entries {
		msg := e.Message
		switch e.Level {
		case constants.LogLevelWarn:
			msg = warnStyle.Render(msg)
		case constants.LogLevelError:
			msg = errorStyle.Render(msg)
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			timeStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			actionStyle.Render(e.Action),
			msg,
		)
	}
	m.viewport.SetContent(b.String())
}
