package suggest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Suggestion is the typed, partial result of one inference call. A nil
// field means the provider offered nothing usable for it.
type Suggestion struct {
	Description   *string
	Deadline      *time.Time
	CategoryName  *string
	PriorityScore *float64
}

// Empty reports whether no field survived normalization.
func (s Suggestion) Empty() bool {
	return s.Description == nil && s.Deadline == nil && s.CategoryName == nil && s.PriorityScore == nil
}

// deadlineLayouts are tried in order. Layouts without a zone read as UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline reads an ISO-8601 style date or date-time.
func ParseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date/time %q", raw)
}

// Normalize turns a raw provider response into a Suggestion. Only a response
// that is not a mapping fails; a bad field is dropped on its own.
func Normalize(raw any) (Suggestion, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return Suggestion{}, &MalformedSuggestionError{Got: describe(raw)}
	}

	var s Suggestion

	if v, ok := fields["priority_score"]; ok {
		if score, ok := toFloat(v); ok {
			clamped := ClampPriority(score)
			s.PriorityScore = &clamped
		}
	}

	if v, ok := fields["deadline"].(string); ok {
		if t, err := ParseDeadline(v); err == nil {
			s.Deadline = &t
		}
	}

	name, ok := fields["category_name"]
	if !ok {
		name, ok = fields["category"]
	}
	if ok {
		if text, isString := name.(string); isString {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				s.CategoryName = &trimmed
			}
		}
	}

	if v, ok := fields["description"].(string); ok {
		s.Description = &v
	}

	return s, nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
