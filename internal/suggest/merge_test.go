package suggest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-todo/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestMergeKeepsUserPriority(t *testing.T) {
	current := TaskDraft{Title: "X", PriorityScore: 0.9}
	got, report := Merge(current, Suggestion{PriorityScore: ptr(0.3)}, nil)
	assert.Equal(t, 0.9, got.PriorityScore)
	assert.Empty(t, report.Applied)
}

func TestMergeFillsEmptyDescription(t *testing.T) {
	current := TaskDraft{Title: "X", Description: "", PriorityScore: DefaultPriority}
	got, report := Merge(current, Suggestion{Description: ptr("Y")}, nil)
	assert.Equal(t, "Y", got.Description)
	assert.Equal(t, []string{FieldDescription}, report.Applied)
}

func TestMergeNeverOverwritesUserValues(t *testing.T) {
	deadline := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	categoryID := uint(4)
	current := TaskDraft{
		Title:         "X",
		Description:   "mine",
		Deadline:      &deadline,
		CategoryID:    &categoryID,
		PriorityScore: 0.2,
		Status:        model.StatusInProgress,
	}
	sug := Suggestion{
		Description:   ptr("theirs"),
		Deadline:      ptr(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
		CategoryName:  ptr("Work"),
		PriorityScore: ptr(1.0),
	}
	categories := []model.Category{{ID: 1, Name: "Work"}}

	got, report := Merge(current, sug, categories)
	if diff := cmp.Diff(current, got); diff != "" {
		t.Fatalf("draft changed (-want +got):\n%s", diff)
	}
	assert.Empty(t, report.Applied)
	assert.Empty(t, report.UnresolvedCategory)
}

func TestMergeFillsEverythingOnFreshDraft(t *testing.T) {
	deadline := time.Date(2025, 7, 7, 12, 0, 0, 0, time.UTC)
	sug := Suggestion{
		Description:   ptr("Create slides for Monday"),
		Deadline:      &deadline,
		CategoryName:  ptr("Work"),
		PriorityScore: ptr(0.8),
	}
	categories := []model.Category{{ID: 1, Name: "Personal"}, {ID: 2, Name: "Work"}}

	got, report := Merge(NewDraft("Prepare presentation"), sug, categories)
	assert.Equal(t, "Create slides for Monday", got.Description)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, uint(2), *got.CategoryID)
	assert.Equal(t, 0.8, got.PriorityScore)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.ElementsMatch(t, []string{FieldDescription, FieldDeadline, FieldPriority, FieldCategory}, report.Applied)

	// The result must not alias the suggestion.
	*sug.Deadline = deadline.Add(time.Hour)
	assert.True(t, deadline.Equal(*got.Deadline))
}

func TestMergeReportsUnresolvedCategory(t *testing.T) {
	got, report := Merge(NewDraft("X"), Suggestion{CategoryName: ptr("work")}, []model.Category{{ID: 1, Name: "Work"}})
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, "work", report.UnresolvedCategory)
	assert.Empty(t, report.Applied)
}

func TestMergeClampsCurrentPriority(t *testing.T) {
	got, _ := Merge(TaskDraft{Title: "X", PriorityScore: 3}, Suggestion{}, nil)
	assert.Equal(t, 1.0, got.PriorityScore)
}

func TestMergeIsDeterministic(t *testing.T) {
	sug := Suggestion{Description: ptr("d"), PriorityScore: ptr(0.7), CategoryName: ptr("Work")}
	categories := []model.Category{{ID: 3, Name: "Work"}}
	a, ra := Merge(NewDraft("X"), sug, categories)
	b, rb := Merge(NewDraft("X"), sug, categories)
	assert.Empty(t, cmp.Diff(a, b))
	assert.Equal(t, ra, rb)
}
