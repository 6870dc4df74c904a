package inference

import (
	"context"
	"time"

	"smart-todo/internal/suggest"
)

const (
	defaultComplexity = 0.5
	workHoursPerWeek  = 40.0
	workHoursPerDay   = 8.0
)

// HeuristicProvider suggests priority, deadline and category from keyword
// analysis alone. It needs no network and is used as the offline fallback.
type HeuristicProvider struct {
	Now func() time.Time
}

func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{Now: time.Now}
}

func (p *HeuristicProvider) Infer(ctx context.Context, req suggest.Request) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := analyzeText(req.Title + " " + req.Description)
	contextAnalysis := Analyze(req.ContextEntries)
	if contextAnalysis.Urgency > analysis.Urgency {
		analysis.Urgency = contextAnalysis.Urgency
	}
	analysis.Work = analysis.Work || contextAnalysis.Work

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	out := map[string]any{
		"priority_score": analysis.Urgency,
		"deadline":       SuggestDeadline(now(), defaultComplexity, analysis.Urgency).Format(time.RFC3339),
	}
	if analysis.Work {
		out["category_name"] = "Work"
	}
	return out, nil
}

// SuggestDeadline spreads base days (complexity × 5, at least one) over the
// available working days, shortening the extra time as urgency grows.
func SuggestDeadline(now time.Time, complexity, urgency float64) time.Time {
	baseDays := int(complexity * 5)
	if baseDays < 1 {
		baseDays = 1
	}
	availableDays := workHoursPerWeek / workHoursPerDay
	adjustment := float64(baseDays) * (1 - urgency) / availableDays
	days := float64(baseDays) + adjustment
	return now.Add(time.Duration(days * float64(24*time.Hour))).UTC().Truncate(time.Second)
}
