package inference

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-todo/internal/model"
	"smart-todo/internal/suggest"
)

func TestSuggestDeadline(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// 2 base days + 2*(1-0.9)/5 days.
	assert.Equal(t, time.Date(2025, 7, 3, 0, 57, 36, 0, time.UTC), SuggestDeadline(now, 0.5, 0.9))
	// 2 base days + 2/5 days.
	assert.Equal(t, time.Date(2025, 7, 3, 9, 36, 0, 0, time.UTC), SuggestDeadline(now, 0.5, 0))
	// Complexity below 0.2 still gives one base day.
	assert.Equal(t, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), SuggestDeadline(now, 0.1, 1))
}

func TestHeuristicProviderFeedsNormalizer(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	p := &HeuristicProvider{Now: func() time.Time { return now }}

	raw, err := p.Infer(context.Background(), suggest.Request{
		Title: "Prepare presentation",
		ContextEntries: []model.ContextEntry{
			{Content: "Need to prepare for Monday's meeting urgently", SourceType: model.SourceWhatsApp},
			{Content: "The deadline is close"},
		},
	})
	require.NoError(t, err)

	s, err := suggest.Normalize(raw)
	require.NoError(t, err)
	require.NotNil(t, s.PriorityScore)
	assert.Equal(t, 0.8, *s.PriorityScore)
	require.NotNil(t, s.Deadline)
	assert.True(t, s.Deadline.After(now))
	require.NotNil(t, s.CategoryName)
	assert.Equal(t, "Work", *s.CategoryName)
	assert.Nil(t, s.Description)
}

func TestHeuristicProviderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHeuristicProvider().Infer(ctx, suggest.Request{Title: "X"})
	assert.ErrorIs(t, err, context.Canceled)
}
