// Package seed builds checklist templates from seed definitions and gives
// every new user a default template on first use.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/models"
)

// TemplateStore is the slice of storage the seeder needs
type TemplateStore interface {
	LoadTemplate(ctx context.Context, userID string) (models.Template, error)
	SaveTemplate(ctx context.Context, userID string, tmpl models.Template) (models.Template, error)
}

// File is the on-disk seed format used by `template import` and `template export`
type File struct {
	Sections []models.SeedSection `yaml:"sections"`
}

// IDFunc generates a fresh unique identifier
type IDFunc func() string

// Seeder turns seed definitions into templates
type Seeder struct {
	newID IDFunc
}

// New returns a Seeder. A nil newID uses random UUIDs.
func New(newID IDFunc) *Seeder {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Seeder{newID: newID}
}

// Default is the catalogue every new user starts with
func Default() []models.SeedSection {
	return []models.SeedSection{
		{
			Title: "Foods eaten today",
			Items: []string{
				"Breakfast: had vegetables and fruit",
				"Lunch: got protein",
				"Dinner: ate a balanced meal",
			},
		},
		{
			Title: "Stock & shopping",
			Items: []string{
				"Bought eggs",
				"Restocked vegetables",
				"Restocked protein / soy products",
			},
		},
	}
}

// Build emits one section per seed section and one unchecked item per label,
// each with a fresh id.
func (s *Seeder) Build(seed []models.SeedSection) models.Template {
	sections := make([]models.ChecklistSection, 0, len(seed))
	for _, def := range seed {
		items := make([]models.ChecklistItem, 0, len(def.Items))
		for _, label := range def.Items {
			items = append(items, models.ChecklistItem{ID: s.newID(), Label: label})
		}
		sections = append(sections, models.ChecklistSection{
			ID:    s.newID(),
			Title: def.Title,
			Items: items,
		})
	}
	return models.Template{Sections: sections}
}

// Ensure returns the user's template, seeding and saving the default one if the
// user has none. The bool reports whether seeding happened.
func (s *Seeder) Ensure(ctx context.Context, store TemplateStore, userID string) (models.Template, bool, error) {
	if userID == "" {
		return models.Template{}, false, apperrors.ErrUnauthenticated
	}

	existing, err := store.LoadTemplate(ctx, userID)
	if err != nil {
		return models.Template{}, false, fmt.Errorf("load template: %w", err)
	}
	if !existing.IsEmpty() {
		return existing, false, nil
	}

	logger.Debug("Seeding default template", "user", userID)
	saved, err := store.SaveTemplate(ctx, userID, s.Build(Default()))
	if err != nil {
		return models.Template{}, false, fmt.Errorf("save seeded template: %w", err)
	}
	return saved, true, nil
}

// Parse decodes a YAML seed file. Blank labels are dropped; a file with no
// sections is rejected.
func Parse(data []byte) ([]models.SeedSection, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse seed file: %v", apperrors.ErrInvalidInput, err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("%w: seed file defines no sections", apperrors.ErrInvalidInput)
	}

	out := make([]models.SeedSection, 0, len(f.Sections))
	for _, sec := range f.Sections {
		labels := make([]string, 0, len(sec.Items))
		for _, label := range sec.Items {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
		out = append(out, models.SeedSection{Title: strings.TrimSpace(sec.Title), Items: labels})
	}
	return out, nil
}

// LoadFile reads and parses a YAML seed file from disk
func LoadFile(path string) ([]models.SeedSection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Export renders a template as a seed file. Ids and checked state are not exported.
func Export(tmpl models.Template) ([]byte, error) {
	f := File{Sections: make([]models.SeedSection, 0, len(tmpl.Sections))}
	for _, sec := range tmpl.Sections {
		labels := make([]string, 0, len(sec.Items))
		for _, item := range sec.Items {
			labels = append(labels, item.Label)
		}
		f.Sections = append(f.Sections, models.SeedSection{Title: sec.Title, Items: labels})
	}
	return yaml.Marshal(f)
}
