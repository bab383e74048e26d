package daily

import (
	"fmt"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

// Toggle flips exactly one item's checked state and returns a new instance;
// inst itself is never modified. Unknown section or item ids are a no-op and
// report false.
func Toggle(inst models.DailyInstance, sectionID, itemID string) (models.DailyInstance, bool) {
	out := inst.Clone()

	si := models.FindSection(out.Sections, sectionID)
	if si < 0 {
		return out, false
	}
	ii := out.Sections[si].FindItem(itemID)
	if ii < 0 {
		return out, false
	}

	out.Sections[si].Items[ii].Checked = !out.Sections[si].Items[ii].Checked
	return out, true
}

// ToggleInHistory toggles an item on the checklist stored for date. The
// history is left untouched; callers publish the returned instance.
func ToggleInHistory(history models.History, date, sectionID, itemID string) (models.DailyInstance, bool, error) {
	inst, ok := history[date]
	if !ok {
		return models.DailyInstance{}, false, fmt.Errorf("%w: no checklist for %s", apperrors.ErrNotFound, date)
	}
	out, changed := Toggle(inst, sectionID, itemID)
	return out, changed, nil
}
