package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateAddItem {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.dragon.SetWidth(msg.Width)
		m.activity.SetSize(msg.Width-4, max(msg.Height-6, 3))
		return m, nil

	case dayLoadedMsg:
		if msg.err != nil {
			m.err = apperrors.UserMessage(msg.err)
			return m, nil
		}
		m.err = ""
		m.status = msg.status
		m.date = msg.date
		m.checklist.SetInstance(msg.inst)
		m.dragon.SetProjection(msg.proj, msg.longest)
		return m, nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.err = apperrors.UserMessage(msg.err)
			return m, nil
		}
		m.activity.SetEntries(msg.entries)
		return m, nil

	case templateSavedMsg:
		if msg.err != nil {
			m.err = apperrors.UserMessage(msg.err)
			return m, nil
		}
		m.status = "Template updated"
		return m, loadDay(m.sess, m.date)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.state == stateActivity {
			return m.updateActivity(msg)
		}
		return m.updateChecklist(msg)
	}

	if m.state == stateActivity {
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateChecklist(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.checklist.Up()
	case key.Matches(msg, m.keys.Down):
		m.checklist.Down()
	case key.Matches(msg, m.keys.Toggle):
		if ref, ok := m.checklist.Selected(); ok {
			return m, toggleItem(m.sess, m.date, ref.SectionID, ref.ItemID)
		}
	case key.Matches(msg, m.keys.PrevDay):
		prev, err := utils.AddDays(m.date, -1)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		return m, loadDay(m.sess, prev)
	case key.Matches(msg, m.keys.NextDay):
		if next, ok := m.nextDay(); ok {
			return m, loadDay(m.sess, next)
		}
	case key.Matches(msg, m.keys.Today):
		return m, loadDay(m.sess, m.sess.Today())
	case key.Matches(msg, m.keys.Reload):
		return m, loadDay(m.sess, m.date)
	case key.Matches(msg, m.keys.Activity):
		m.state = stateActivity
		return m, loadActivity(m.sess)
	case key.Matches(msg, m.keys.Add):
		return m.openAddForm()
	}
	return m, nil
}

// nextDay returns the day after the current one unless that is in the future
func (m Model) nextDay() (string, bool) {
	next, err := utils.AddDays(m.date, 1)
	if err != nil || next > m.sess.Today() {
		return "", false
	}
	return next, true
}

func (m Model) updateActivity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Activity) || msg.Type == tea.KeyEsc {
		m.state = stateChecklist
		return m, nil
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

func (m Model) openAddForm() (tea.Model, tea.Cmd) {
	tmpl, err := m.sess.Template()
	if err != nil {
		m.err = apperrors.UserMessage(err)
		return m, nil
	}

	m.addForm = &addItemForm{}
	options := make([]huh.Option[string], 0, len(tmpl.Sections))
	for _, sec := range tmpl.Sections {
		title := sec.Title
		if title == "" {
			title = "Untitled"
		}
		options = append(options, huh.NewOption(title, sec.ID))
	}

	var fields []huh.Field
	if len(options) > 0 {
		m.addForm.Section = options[0].Value
		fields = append(fields, huh.NewSelect[string]().
			Title("Section").
			Options(options...).
			Value(&m.addForm.Section))
	} else {
		fields = append(fields, huh.NewInput().
			Title("New section title").
			Value(&m.addForm.Section))
	}
	fields = append(fields, huh.NewInput().
		Title("Item").
		Value(&m.addForm.Label).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("label is required")
			}
			return nil
		}))

	m.form = huh.NewForm(huh.NewGroup(fields...))
	m.state = stateAddItem
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = stateChecklist
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = stateChecklist
		return m, tea.Batch(cmd, addTemplateItem(m.sess, m.addForm.Section, m.addForm.Label))
	case huh.StateAborted:
		m.state = stateChecklist
	}
	return m, cmd
}
