package suggest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-todo/internal/model"
)

func TestBuildRejectsEmptyDraft(t *testing.T) {
	_, err := Builder{}.Build(TaskDraft{Title: "  ", Description: "\n"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDraft)

	var target *InvalidDraftError
	assert.ErrorAs(t, err, &target)
}

func TestBuildAcceptsDescriptionOnly(t *testing.T) {
	req, err := Builder{}.Build(TaskDraft{Description: "call the bank"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "call the bank", req.Description)
	assert.Empty(t, req.ContextEntries)
}

func TestBuildKeepsSmallCollections(t *testing.T) {
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.ContextEntry{
		{ID: 1, Content: "a", CreatedAt: base},
		{ID: 2, Content: "b", CreatedAt: base.Add(time.Hour)},
	}

	req, err := Builder{MaxEntries: 5}.Build(NewDraft("X"), entries)
	require.NoError(t, err)
	require.Len(t, req.ContextEntries, 2)
	assert.Equal(t, uint(2), req.ContextEntries[0].ID)
	assert.Equal(t, uint(1), entries[0].ID, "input order untouched")
}

func TestBuildBoundsToMostRecent(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]model.ContextEntry, 10000)
	for i := range entries {
		// Shuffle-ish order so the builder must sort.
		n := (i * 7919) % len(entries)
		entries[i] = model.ContextEntry{
			ID:        uint(n + 1),
			Content:   "entry",
			CreatedAt: base.Add(time.Duration(n) * time.Minute),
		}
	}

	req, err := Builder{MaxEntries: 20}.Build(NewDraft("Prepare presentation"), entries)
	require.NoError(t, err)
	require.Len(t, req.ContextEntries, 20)
	for i, entry := range req.ContextEntries {
		assert.Equal(t, uint(10000-i), entry.ID)
	}
}

func TestBuildDefaultCap(t *testing.T) {
	entries := make([]model.ContextEntry, DefaultMaxEntries+5)
	for i := range entries {
		entries[i] = model.ContextEntry{ID: uint(i + 1)}
	}
	req, err := Builder{MaxEntries: -1}.Build(NewDraft("X"), entries)
	require.NoError(t, err)
	assert.Len(t, req.ContextEntries, DefaultMaxEntries)
}

func TestBuildBreaksTiesByID(t *testing.T) {
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.ContextEntry{
		{ID: 3, CreatedAt: at},
		{ID: 9, CreatedAt: at},
		{ID: 5, CreatedAt: at},
	}
	req, err := Builder{MaxEntries: 2}.Build(NewDraft("X"), entries)
	require.NoError(t, err)
	assert.Equal(t, uint(9), req.ContextEntries[0].ID)
	assert.Equal(t, uint(5), req.ContextEntries[1].ID)
}
