package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/dragonlog/internal/constants"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/seed"
)

// Template returns a copy of the active user's template
func (s *Session) Template() (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return models.Template{}, err
	}
	return s.template.Clone(), nil
}

// RefreshTemplate reloads the template from the store, seeding it if empty
func (s *Session) RefreshTemplate(ctx context.Context) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := s.requireUser()
	if err != nil {
		return models.Template{}, err
	}

	if err := s.refreshTemplateLocked(ctx, uid); err != nil {
		return models.Template{}, err
	}
	return s.template.Clone(), nil
}

func (s *Session) refreshTemplateLocked(ctx context.Context, uid string) error {
	tmpl, seeded, err := s.seeder.Ensure(ctx, s.store, uid)
	if err != nil {
		return err
	}
	if seeded {
		s.journal.Info(ctx, uid, constants.ActionTemplateSeed, "seeded default checklist template")
	}
	s.template = tmpl
	return nil
}

// SaveTemplate replaces the user's template. The store fills in missing ids
// and clears checked flags; the stored version is returned.
func (s *Session) SaveTemplate(ctx context.Context, tmpl models.Template) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTemplateLocked(ctx, tmpl)
}

func (s *Session) saveTemplateLocked(ctx context.Context, tmpl models.Template) (models.Template, error) {
	uid, err := s.requireUser()
	if err != nil {
		return models.Template{}, err
	}

	saved, err := s.store.SaveTemplate(ctx, uid, tmpl)
	if err != nil {
		return models.Template{}, fmt.Errorf("save template: %w", err)
	}
	s.template = saved
	s.journal.Info(ctx, uid, constants.ActionTemplateSave,
		fmt.Sprintf("saved template with %d sections and %d items", len(saved.Sections), saved.ItemCount()))
	return saved.Clone(), nil
}

// ImportTemplate replaces the template with one built from seed sections
func (s *Session) ImportTemplate(ctx context.Context, sections []models.SeedSection) (models.Template, error) {
	return s.SaveTemplate(ctx, s.seeder.Build(sections))
}

// ResetTemplate replaces the template with the default seed
func (s *Session) ResetTemplate(ctx context.Context) (models.Template, error) {
	return s.ImportTemplate(ctx, seed.Default())
}

// AddTemplateItem appends an item to the section with the given id, or to a
// new section titled sectionRef when no id matches.
func (s *Session) AddTemplateItem(ctx context.Context, sectionRef, label string) (models.Template, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.Template{}, fmt.Errorf("%w: item label is required", apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return models.Template{}, err
	}

	tmpl := s.template.Clone()
	item := models.ChecklistItem{Label: label}
	if si := findSectionRef(tmpl.Sections, sectionRef); si >= 0 {
		tmpl.Sections[si].Items = append(tmpl.Sections[si].Items, item)
	} else {
		tmpl.Sections = append(tmpl.Sections, models.ChecklistSection{
			Title: strings.TrimSpace(sectionRef),
			Items: []models.ChecklistItem{item},
		})
	}
	return s.saveTemplateLocked(ctx, tmpl)
}

// RemoveTemplateItem deletes one item; a section left empty is kept
func (s *Session) RemoveTemplateItem(ctx context.Context, sectionRef, itemID string) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requireUser(); err != nil {
		return models.Template{}, err
	}

	tmpl := s.template.Clone()
	si := findSectionRef(tmpl.Sections, sectionRef)
	if si < 0 {
		return models.Template{}, fmt.Errorf("%w: section %q", apperrors.ErrNotFound, sectionRef)
	}
	ii := tmpl.Sections[si].FindItem(itemID)
	if ii < 0 {
		return models.Template{}, fmt.Errorf("%w: item %q", apperrors.ErrNotFound, itemID)
	}
	items := tmpl.Sections[si].Items
	tmpl.Sections[si].Items = append(items[:ii:ii], items[ii+1:]...)
	return s.saveTemplateLocked(ctx, tmpl)
}

// findSectionRef matches a section by id first, then by case-insensitive title
func findSectionRef(sections []models.ChecklistSection, ref string) int {
	if i := models.FindSection(sections, ref); i >= 0 {
		return i
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	for i, sec := range sections {
		if strings.EqualFold(sec.Title, ref) {
			return i
		}
	}
	return -1
}
