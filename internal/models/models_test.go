package models

import (
	"slices"
	"testing"
	"time"
)

func TestTodoPatchApply(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	category := "c1"
	base := Todo{
		ID:         "a",
		Title:      "milk",
		UserID:     "alice",
		Priority:   PriorityLow,
		DueDate:    &due,
		CategoryID: &category,
		Tags:       []string{"t1"},
	}

	title := "oat milk"
	high := PriorityHigh
	tags := []string{"t2", "t2"}
	patch := TodoPatch{
		Title:         &title,
		Priority:      &high,
		ClearDueDate:  true,
		ClearCategory: true,
		Tags:          &tags,
	}

	got := patch.Apply(base)
	if got.Title != "oat milk" || got.Priority != PriorityHigh {
		t.Errorf("fields not merged: %+v", got)
	}
	if got.DueDate != nil || got.CategoryID != nil {
		t.Errorf("cleared fields still set: %+v", got)
	}
	if !slices.Equal(got.Tags, []string{"t2", "t2"}) {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.UserID != "alice" || got.ID != "a" {
		t.Errorf("untouched fields changed: %+v", got)
	}

	// The original is not modified and applying twice changes nothing more.
	if base.Title != "milk" || base.DueDate == nil || !slices.Equal(base.Tags, []string{"t1"}) {
		t.Errorf("base mutated: %+v", base)
	}
	again := patch.Apply(got)
	if again.Title != got.Title || !slices.Equal(again.Tags, got.Tags) || again.Priority != got.Priority {
		t.Errorf("second apply differs: %+v vs %+v", again, got)
	}
}

func TestTodoCloneIsDeep(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Todo{Tags: []string{"t1"}, DueDate: &due}
	b := a.Clone()
	b.Tags[0] = "changed"
	*b.DueDate = due.Add(time.Hour)

	if a.Tags[0] != "t1" || !a.DueDate.Equal(due) {
		t.Errorf("clone shares memory with original: %+v", a)
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityHigh.Rank() < PriorityMedium.Rank() && PriorityMedium.Rank() < PriorityLow.Rank()) {
		t.Error("expected high < medium < low")
	}
	if Priority("urgent").Valid() {
		t.Error("unknown priority reported valid")
	}
}

func TestThemePatchMerge(t *testing.T) {
	got := ThemePatch{Primary: "green"}.Merge(DefaultTheme())
	want := Theme{Primary: "green", Secondary: "violet", Accent: "indigo", Background: "purple-50"}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
	if !KnownThemeColor("rose") || KnownThemeColor("teal") {
		t.Error("KnownThemeColor mismatch")
	}
}
