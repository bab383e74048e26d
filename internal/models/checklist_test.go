package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleInstance() DailyInstance {
	return DailyInstance{
		Date: "2024-05-10",
		Sections: []ChecklistSection{
			{ID: "s1", Title: "Food", Items: []ChecklistItem{
				{ID: "i1", Label: "Breakfast", Checked: true},
				{ID: "i2", Label: "Lunch"},
			}},
			{ID: "s2", Items: []ChecklistItem{}},
		},
	}
}

func TestDailyInstance_CloneIsIndependent(t *testing.T) {
	orig := sampleInstance()
	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.Sections[0].Items[1].Checked = true
	clone.Sections[0].Items[0].Label = "Brunch"
	clone.Sections[1].Items = append(clone.Sections[1].Items, ChecklistItem{ID: "x", Label: "x"})

	if orig.Sections[0].Items[1].Checked {
		t.Error("mutating clone changed original checked state")
	}
	if orig.Sections[0].Items[0].Label != "Breakfast" {
		t.Error("mutating clone changed original label")
	}
	if len(orig.Sections[1].Items) != 0 {
		t.Error("mutating clone changed original item count")
	}
}

func TestDailyInstance_IsComplete(t *testing.T) {
	tests := []struct {
		name string
		inst DailyInstance
		want bool
	}{
		{name: "no sections", inst: DailyInstance{Date: "2024-05-10"}, want: true},
		{name: "empty section", inst: DailyInstance{Sections: []ChecklistSection{{ID: "s"}}}, want: true},
		{name: "one unchecked", inst: sampleInstance(), want: false},
		{
			name: "all checked",
			inst: DailyInstance{Sections: []ChecklistSection{
				{ID: "s1", Items: []ChecklistItem{{ID: "a", Label: "a", Checked: true}}},
				{ID: "s2"},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inst.IsComplete(); got != tt.want {
				t.Errorf("IsComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyInstance_Counts(t *testing.T) {
	total, checked := sampleInstance().Counts()
	if total != 2 || checked != 1 {
		t.Errorf("Counts() = (%d, %d), want (2, 1)", total, checked)
	}
}

func TestHistory_Dates(t *testing.T) {
	h := History{
		"2024-05-08": {Date: "2024-05-08"},
		"2024-05-10": {Date: "2024-05-10"},
		"2023-12-31": {Date: "2023-12-31"},
	}
	want := []string{"2024-05-10", "2024-05-08", "2023-12-31"}
	if diff := cmp.Diff(want, h.Dates()); diff != "" {
		t.Errorf("Dates() mismatch (-want +got):\n%s", diff)
	}
}

func TestFindSectionAndItem(t *testing.T) {
	inst := sampleInstance()
	if i := FindSection(inst.Sections, "s2"); i != 1 {
		t.Errorf("FindSection(s2) = %d, want 1", i)
	}
	if i := FindSection(inst.Sections, "nope"); i != -1 {
		t.Errorf("FindSection(nope) = %d, want -1", i)
	}
	if i := inst.Sections[0].FindItem("i2"); i != 1 {
		t.Errorf("FindItem(i2) = %d, want 1", i)
	}
}

func TestTemplate_ItemCount(t *testing.T) {
	tmpl := Template{Sections: sampleInstance().Sections}
	if tmpl.IsEmpty() {
		t.Error("IsEmpty() = true for populated template")
	}
	if n := tmpl.ItemCount(); n != 2 {
		t.Errorf("ItemCount() = %d, want 2", n)
	}
}
