package models

import "sort"

// ChecklistItem is a single checkable line inside a section
type ChecklistItem struct {
	ID      string `json:"id" validate:"required"`
	Label   string `json:"label" validate:"required"`
	Checked bool   `json:"checked"`
}

// ChecklistSection groups items under an optional title. Item order is display order.
type ChecklistSection struct {
	ID    string          `json:"id" validate:"required"`
	Title string          `json:"title,omitempty"`
	Items []ChecklistItem `json:"items" validate:"dive"`
}

// Template is the reusable shape of a user's daily checklist.
// Checked is ignored on template items.
type Template struct {
	Sections []ChecklistSection `json:"sections" validate:"dive"`
}

// DailyInstance is one day's materialized checklist, keyed by (user, Date)
type DailyInstance struct {
	Date     string             `json:"date" validate:"required,datetime=2006-01-02"`
	Sections []ChecklistSection `json:"sections" validate:"dive"`
}

// History maps a YYYY-MM-DD date to that day's instance
type History map[string]DailyInstance

// FindItem returns the index of the item with the given id, or -1
func (s ChecklistSection) FindItem(id string) int {
	for i, item := range s.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of the section that shares no slices with s
func (s ChecklistSection) Clone() ChecklistSection {
	out := s
	if s.Items != nil {
		out.Items = make([]ChecklistItem, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

// CloneSections deep-copies a section list
func CloneSections(sections []ChecklistSection) []ChecklistSection {
	if sections == nil {
		return nil
	}
	out := make([]ChecklistSection, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// FindSection returns the index of the section with the given id, or -1
func FindSection(sections []ChecklistSection, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the template
func (t Template) Clone() Template {
	return Template{Sections: CloneSections(t.Sections)}
}

// IsEmpty reports whether the template has no sections
func (t Template) IsEmpty() bool {
	return len(t.Sections) == 0
}

// ItemCount returns the total number of items across all sections
func (t Template) ItemCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Items)
	}
	return n
}

// Clone deep-copies the instance
func (d DailyInstance) Clone() DailyInstance {
	return DailyInstance{Date: d.Date, Sections: CloneSections(d.Sections)}
}

// IsComplete reports whether every item in every section is checked.
// Sections without items, and instances without sections, count as complete.
func (d DailyInstance) IsComplete() bool {
	for _, s := range d.Sections {
		for _, item := range s.Items {
			if !item.Checked {
				return false
			}
		}
	}
	return true
}

// Counts returns the number of items and the number of checked items
func (d DailyInstance) Counts() (total, checked int) {
	for _, s := range d.Sections {
		for _, item := range s.Items {
			total++
			if item.Checked {
				checked++
			}
		}
	}
	return total, checked
}

// Dates returns the history's dates, most recent first
func (h History) Dates() []string {
	dates := make([]string, 0, len(h))
	for date := range h {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// Clone returns a history whose instances share no structure with h
func (h History) Clone() History {
	out := make(History, len(h))
	for date, inst := range h {
		out[date] = inst.Clone()
	}
	return out
}
