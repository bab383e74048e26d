package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/validation"
)

var validator = validation.New()

// EncodeSections serializes checklist sections for the daily_checklists table
func EncodeSections(sections []models.ChecklistSection) ([]byte, error) {
	if sections == nil {
		sections = []models.ChecklistSection{}
	}
	return json.Marshal(sections)
}

// DecodeDaily parses a stored sections payload and validates its shape.
// Anything that does not decode into well-formed sections is ErrMalformed.
func DecodeDaily(date string, data []byte) (models.DailyInstance, error) {
	var sections []models.ChecklistSection
	if err := json.Unmarshal(data, &sections); err != nil {
		return models.DailyInstance{}, fmt.Errorf("%w: checklist %s: %v", apperrors.ErrMalformed, date, err)
	}
	for i := range sections {
		if sections[i].Items == nil {
			sections[i].Items = []models.ChecklistItem{}
		}
	}
	if sections == nil {
		sections = []models.ChecklistSection{}
	}

	inst := models.DailyInstance{Date: date, Sections: sections}
	result := validator.ValidateInstance(inst, date)
	if err := result.Err(apperrors.ErrMalformed); err != nil {
		return models.DailyInstance{}, fmt.Errorf("checklist %s: %w", date, err)
	}
	return inst, nil
}

// NormalizeTemplate prepares a template for saving: trims text, assigns ids to
// sections and items that lack one, clears checked flags, and rejects
// templates that still fail validation.
func NormalizeTemplate(tmpl models.Template) (models.Template, error) {
	out := tmpl.Clone()
	if out.Sections == nil {
		out.Sections = []models.ChecklistSection{}
	}
	for i := range out.Sections {
		sec := &out.Sections[i]
		sec.ID = strings.TrimSpace(sec.ID)
		if sec.ID == "" {
			sec.ID = uuid.NewString()
		}
		sec.Title = strings.TrimSpace(sec.Title)
		if sec.Items == nil {
			sec.Items = []models.ChecklistItem{}
		}
		for j := range sec.Items {
			item := &sec.Items[j]
			item.ID = strings.TrimSpace(item.ID)
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.Label = strings.TrimSpace(item.Label)
			item.Checked = false
		}
	}

	result := validator.ValidateTemplate(out)
	if err := result.Err(apperrors.ErrInvalidInput); err != nil {
		return models.Template{}, err
	}
	return out, nil
}

// ValidateInstance rejects a checklist that cannot be stored
func ValidateInstance(inst models.DailyInstance) error {
	result := validator.ValidateInstance(inst, "")
	return result.Err(apperrors.ErrInvalidInput)
}
