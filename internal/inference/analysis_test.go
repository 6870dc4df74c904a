package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smart-todo/internal/model"
)

func TestAnalyze(t *testing.T) {
	entries := []model.ContextEntry{
		{Content: "Need to prepare for Monday's MEETING, it's urgent!"},
		{Content: "Reminder: dentist tomorrow."},
	}
	a := Analyze(entries)
	assert.Equal(t, []string{"meeting", "tomorrow", "urgent"}, a.Keywords)
	assert.Equal(t, 0.9, a.Urgency)
	assert.Zero(t, a.Sentiment)
	assert.True(t, a.Work)
}

func TestAnalyzeNoSignal(t *testing.T) {
	a := Analyze([]model.ContextEntry{{Content: "bought some apples"}})
	assert.Empty(t, a.Keywords)
	assert.Zero(t, a.Urgency)
	assert.False(t, a.Work)

	assert.Zero(t, Analyze(nil).Urgency)
}

func TestInsights(t *testing.T) {
	got := Insights(model.ContextEntry{Content: "deadline today for the client report"})
	assert.Equal(t, map[string]string{"keywords": "deadline,today", "urgency": "0.8", "sentiment": "0"}, got)

	got = Insights(model.ContextEntry{Content: "nothing to see"})
	assert.Equal(t, map[string]string{"keywords": "", "urgency": "0", "sentiment": "0"}, got)

	got = Insights(model.ContextEntry{Content: "Client is angry, the report is late"})
	assert.Equal(t, "-0.6369", got["sentiment"])
}

func TestSentiment(t *testing.T) {
	assert.Zero(t, Sentiment(""))
	assert.Zero(t, Sentiment("meeting moved to 10am"))

	good := Sentiment("the demo went great")
	assert.InDelta(t, 0.6249, good, 1e-4)
	assert.Greater(t, Sentiment("the demo went really great"), good)
	assert.Greater(t, Sentiment("the demo went great!!"), Sentiment("the demo went really great"))
	assert.Less(t, Sentiment("the demo did not go great"), 0.0)
	assert.Less(t, Sentiment("the build isn't good"), 0.0)

	bad := Sentiment("terrible day, everything failed and I'm stressed")
	assert.Less(t, bad, -0.5)
	assert.GreaterOrEqual(t, bad, -1.0)

	extreme := Sentiment("worst worst worst worst worst worst worst worst")
	assert.GreaterOrEqual(t, extreme, -1.0)
	assert.Less(t, extreme, -0.98)
}
