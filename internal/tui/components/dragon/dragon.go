// Package dragon draws the dragon card: the evolution stage, streak and goal progress.
package dragon

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dragonlog/internal/constants"
	dprogress "github.com/julianstephens/dragonlog/internal/progress"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)

	iconStyle = lipgloss.NewStyle().
			Bold(true).
			MarginRight(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Model renders a projection statically; the bar never animates
type Model struct {
	bar     progress.Model
	proj    dprogress.Projection
	longest int
}

func New() Model {
	return Model{bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))}
}

func (m *Model) SetProjection(proj dprogress.Projection, longest int) {
	m.proj = proj
	m.longest = longest
}

func (m *Model) SetWidth(width int) {
	m.bar.Width = max(10, min(width-12, 50))
}

func (m Model) View() string {
	info := m.proj.Info
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		iconStyle.Render(info.Icon),
		titleStyle.Render(info.Title),
		mutedStyle.Render(fmt.Sprintf("  stage %d/%d", m.proj.Stage+1, constants.StageCount)),
	)

	streak := fmt.Sprintf("🔥 %d day streak  ·  best %d  ·  goal %d days", m.proj.Streak, m.longest, m.proj.GoalDays)
	remaining := "Goal reached!"
	if left := m.proj.DaysRemaining(); left > 0 {
		remaining = fmt.Sprintf("%d more days to go", left)
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		mutedStyle.Render(info.Description),
		"",
		m.bar.ViewAs(m.proj.Ratio),
		streak,
		mutedStyle.Render(remaining),
	))
}
