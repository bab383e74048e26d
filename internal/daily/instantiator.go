// Package daily materializes per-day checklists from a user's template and
// applies item toggles to them.
package daily

import (
	"context"
	"fmt"

	"github.com/julianstephens/dragonlog/internal/constants"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/models"
)

// Store is the daily-checklist persistence the instantiator needs
type Store interface {
	FetchDaily(ctx context.Context, userID, date string) (models.DailyInstance, error)
	UpsertDaily(ctx context.Context, userID string, inst models.DailyInstance) error
}

// Outcome tells the caller what Ensure had to do
type Outcome int

const (
	// Existing means the stored checklist was returned unchanged
	Existing Outcome = iota
	// Materialized means a new checklist was created from the template
	Materialized
	// Reconciled means today's checklist was rebuilt after the template changed
	Reconciled
)

func (o Outcome) String() string {
	switch o {
	case Materialized:
		return "materialized"
	case Reconciled:
		return "reconciled"
	default:
		return "existing"
	}
}

// Instantiator resolves the checklist for a (user, date) pair
type Instantiator struct {
	store  Store
	policy constants.ReconcilePolicy
}

// NewInstantiator creates an Instantiator. An unknown policy falls back to merge.
func NewInstantiator(store Store, policy constants.ReconcilePolicy) *Instantiator {
	if policy != constants.ReconcileReplace {
		policy = constants.ReconcileMerge
	}
	return &Instantiator{store: store, policy: policy}
}

// Policy returns the reconcile policy in effect
func (in *Instantiator) Policy() constants.ReconcilePolicy {
	return in.policy
}

// Ensure returns the checklist for date, creating it from tmpl when absent and
// reconciling it against tmpl when date is today and the structure drifted.
// If cached is non-nil it is used instead of reading the store.
func (in *Instantiator) Ensure(ctx context.Context, userID string, tmpl models.Template, date, today string, cached *models.DailyInstance) (models.DailyInstance, Outcome, error) {
	if userID == "" {
		return models.DailyInstance{}, Existing, apperrors.ErrUnauthenticated
	}

	var existing *models.DailyInstance
	if cached != nil {
		c := cached.Clone()
		existing = &c
	} else {
		stored, err := in.store.FetchDaily(ctx, userID, date)
		switch {
		case err == nil:
			existing = &stored
		case apperrors.Is(err, apperrors.ErrMalformed):
			logger.Warn("Stored checklist is malformed, rebuilding", "user", userID, "date", date, "error", err)
		case apperrors.Is(err, apperrors.ErrNotFound):
		default:
			return models.DailyInstance{}, Existing, fmt.Errorf("fetch checklist %s: %w", date, err)
		}
	}

	if existing == nil {
		inst := Materialize(tmpl, date)
		if err := in.store.UpsertDaily(ctx, userID, inst); err != nil {
			return models.DailyInstance{}, Existing, fmt.Errorf("save checklist %s: %w", date, err)
		}
		return inst, Materialized, nil
	}

	if date == today && NeedsReconcile(*existing, tmpl) {
		inst := Reconcile(*existing, tmpl, in.policy)
		if err := in.store.UpsertDaily(ctx, userID, inst); err != nil {
			return models.DailyInstance{}, Existing, fmt.Errorf("save reconciled checklist %s: %w", date, err)
		}
		logger.Debug("Reconciled checklist", "user", userID, "date", date, "policy", in.policy)
		return inst, Reconciled, nil
	}

	return *existing, Existing, nil
}

// Materialize copies the template into a fresh, fully unchecked checklist for date
func Materialize(tmpl models.Template, date string) models.DailyInstance {
	sections := models.CloneSections(tmpl.Sections)
	if sections == nil {
		sections = []models.ChecklistSection{}
	}
	for i := range sections {
		if sections[i].Items == nil {
			sections[i].Items = []models.ChecklistItem{}
		}
		for j := range sections[i].Items {
			sections[i].Items[j].Checked = false
		}
	}
	return models.DailyInstance{Date: date, Sections: sections}
}

// NeedsReconcile reports whether inst has drifted from tmpl: a template section
// or item id is missing from inst, or a matched item's label differs. Extra
// sections or items in inst do not count, and an empty template never does.
func NeedsReconcile(inst models.DailyInstance, tmpl models.Template) bool {
	for _, tsec := range tmpl.Sections {
		si := models.FindSection(inst.Sections, tsec.ID)
		if si < 0 {
			return true
		}
		isec := inst.Sections[si]
		for _, titem := range tsec.Items {
			ii := isec.FindItem(titem.ID)
			if ii < 0 {
				return true
			}
			if isec.Items[ii].Label != titem.Label {
				return true
			}
		}
	}
	return false
}

// Reconcile rebuilds inst's structure from tmpl. With the merge policy,
// items whose (section id, item id) survive keep their checked state; with
// replace, everything starts unchecked.
func Reconcile(inst models.DailyInstance, tmpl models.Template, policy constants.ReconcilePolicy) models.DailyInstance {
	out := Materialize(tmpl, inst.Date)
	if policy == constants.ReconcileReplace {
		return out
	}

	type key struct{ section, item string }
	checked := make(map[key]bool)
	for _, sec := range inst.Sections {
		for _, item := range sec.Items {
			if item.Checked {
				checked[key{sec.ID, item.ID}] = true
			}
		}
	}

	for i, sec := range out.Sections {
		for j, item := range sec.Items {
			if checked[key{sec.ID, item.ID}] {
				out.Sections[i].Items[j].Checked = true
			}
		}
	}
	return out
}
