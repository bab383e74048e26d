// Package checklist renders one day's checklist with a cursor over its items.
package checklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dragonlog/internal/models"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginTop(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Strikethrough(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Ref identifies one item in the checklist
type Ref struct {
	SectionID string
	ItemID    string
}

// Model holds the checklist and the cursor position among its items
type Model struct {
	inst   models.DailyInstance
	refs   []Ref
	cursor int
}

func New() Model {
	return Model{}
}

// SetInstance replaces the checklist, keeping the cursor on the same item when it still exists
func (m *Model) SetInstance(inst models.DailyInstance) {
	var current Ref
	if ref, ok := m.Selected(); ok {
		current = ref
	}

	m.inst = inst
	refs := make([]Ref, 0, len(m.refs))
	for _, sec := range inst.Sections {
		for _, item := range sec.Items {
			refs = append(refs, Ref{SectionID: sec.ID, ItemID: item.ID})
		}
	}
	m.refs = refs

	m.cursor = 0
	for i, ref := range m.refs {
		if ref == current {
			m.cursor = i
			break
		}
	}
}

// Instance returns the checklist being shown
func (m Model) Instance() models.DailyInstance {
	return m.inst
}

// Selected returns the item under the cursor
func (m Model) Selected() (Ref, bool) {
	if m.cursor < 0 || m.cursor >= len(m.refs) {
		return Ref{}, false
	}
	return m.refs[m.cursor], true
}

// Cursor returns the index of the selected item
func (m Model) Cursor() int {
	return m.cursor
}

func (m *Model) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Model) Down() {
	if m.cursor < len(m.refs)-1 {
		m.cursor++
	}
}

func (m Model) View() string {
	if len(m.inst.Sections) == 0 {
		return emptyStyle.Render("This checklist has no sections.")
	}

	selected, _ := m.Selected()
	var b strings.Builder
	for _, sec := range m.inst.Sections {
		title := sec.Title
		if title == "" {
			title = "Untitled"
		}
		_, checked := sectionCounts(sec)
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d/%d)", title, checked, len(sec.Items))))
		b.WriteString("\n")

		if len(sec.Items) == 0 {
			b.WriteString(emptyStyle.Render("  nothing here"))
			b.WriteString("\n")
		}
		for _, item := range sec.Items {
			box := "[ ]"
			label := item.Label
			if item.Checked {
				box = "[x]"
				label = checkedStyle.Render(label)
			}
			line := fmt.Sprintf("  %s %s", box, label)
			if (Ref{SectionID: sec.ID, ItemID: item.ID}) == selected {
				line = cursorStyle.Render("> ") + fmt.Sprintf("%s %s", box, label)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sectionCounts(sec models.ChecklistSection) (total, checked int) {
	for _, item := range sec.Items {
		total++
		if item.Checked {
			checked++
		}
	}
	return total, checked
}
