package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case stateChecklist:
		content = m.viewChecklist()
	case stateActivity:
		content = docStyle.Render(m.activity.View())
	case stateAddItem:
		content = docStyle.Render(m.form.View())
	}

	var footer string
	switch {
	case m.err != "":
		footer = dangerStyle.Render("Error: " + m.err)
	case m.status != "":
		footer = warningStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		footer,
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	titles := []string{"Checklist", "Activity"}
	active := 0
	if m.state == stateActivity {
		active = 1
	}

	tabs := make([]string, 0, len(titles))
	for i, title := range titles {
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewChecklist() string {
	label := m.date
	if m.date == m.sess.Today() {
		label += " (today)"
	}
	next := " ▶"
	if _, ok := m.nextDay(); !ok {
		next = "  "
	}
	header := dateStyle.Render(fmt.Sprintf("◀ %s%s", label, next))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.dragon.View(),
		"",
		header,
		m.checklist.View(),
	))
}
