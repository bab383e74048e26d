package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidField       ConflictType = "invalid_field"
	ConflictDuplicateSectionID ConflictType = "duplicate_section_id"
	ConflictDuplicateItemID    ConflictType = "duplicate_item_id"
	ConflictDateMismatch       ConflictType = "date_mismatch"
)

// Conflict represents a detected problem in a template or daily checklist
type Conflict struct {
	Type        ConflictType
	Description string
	SectionID   string
	ItemID      string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d conflict(s):\n", len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Err converts the result into an error wrapping kind, or nil when clean
func (vr *ValidationResult) Err(kind error) error {
	if !vr.HasConflicts() {
		return nil
	}
	descs := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		descs = append(descs, c.Description)
	}
	return fmt.Errorf("%w: %s", kind, strings.Join(descs, "; "))
}

// Validator checks checklist structures and request payloads
type Validator struct {
	v *validator.Validate
}

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// New creates a new Validator. Besides the stock tags it understands
// `userid`: letters, digits, dot, underscore and hyphen.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// ValidateTemplate checks field shapes and id uniqueness of a template
func (v *Validator) ValidateTemplate(t models.Template) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	v.collectFieldErrors(t, &result)
	checkIDs(t.Sections, &result)
	return result
}

// ValidateInstance checks a daily checklist. If date is non-empty the
// instance must carry that date.
func (v *Validator) ValidateInstance(d models.DailyInstance, date string) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	v.collectFieldErrors(d, &result)
	if date != "" && d.Date != date {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDateMismatch,
			Description: fmt.Sprintf("checklist is dated %q but stored under %q", d.Date, date),
		})
	}
	checkIDs(d.Sections, &result)
	return result
}

// Struct validates a tagged request struct and returns an error wrapping
// ErrInvalidInput that names each failing field.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

func (v *Validator) collectFieldErrors(s interface{}, result *ValidationResult) {
	err := v.v.Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Conflicts = append(result.Conflicts, Conflict{Type: ConflictInvalidField, Description: err.Error()})
		return
	}
	for _, fe := range fieldErrs {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidField,
			Description: describe(fe),
		})
	}
}

func checkIDs(sections []models.ChecklistSection, result *ValidationResult) {
	sectionSeen := make(map[string]bool)
	for _, s := range sections {
		if s.ID != "" && sectionSeen[s.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateSectionID,
				Description: fmt.Sprintf("duplicate section id %q", s.ID),
				SectionID:   s.ID,
			})
		}
		sectionSeen[s.ID] = true

		itemSeen := make(map[string]bool)
		for _, item := range s.Items {
			if item.ID != "" && itemSeen[item.ID] {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictDuplicateItemID,
					Description: fmt.Sprintf("duplicate item id %q in section %q", item.ID, s.ID),
					SectionID:   s.ID,
					ItemID:      item.ID,
				})
			}
			itemSeen[item.ID] = true
		}
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Namespace())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Namespace())
	case "userid":
		return fmt.Sprintf("%s may only contain letters, digits, '.', '_' and '-'", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %q check", fe.Namespace(), fe.Tag())
	}
}
