package inference

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"smart-todo/internal/model"
)

// urgencyKeywords maps signal words to an urgency weight.
var urgencyKeywords = map[string]float64{
	"urgent":   0.9,
	"asap":     0.9,
	"today":    0.7,
	"tomorrow": 0.5,
	"meeting":  0.6,
	"deadline": 0.8,
}

// workKeywords hint that the context is about work.
var workKeywords = map[string]bool{
	"meeting":      true,
	"deadline":     true,
	"client":       true,
	"report":       true,
	"presentation": true,
	"project":      true,
}

// Analysis is the keyword and tone summary of a set of context entries.
type Analysis struct {
	Keywords  []string `json:"keywords"`
	Urgency   float64  `json:"urgency"`
	Sentiment float64  `json:"sentiment"`
	Work      bool     `json:"work"`
}

// Analyze scans entries for urgency and work keywords.
func Analyze(entries []model.ContextEntry) Analysis {
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Content
	}
	return analyzeText(strings.Join(texts, " "))
}

// Insights renders the analysis of a single entry for storage.
func Insights(entry model.ContextEntry) map[string]string {
	a := Analyze([]model.ContextEntry{entry})
	return map[string]string{
		"keywords":  strings.Join(a.Keywords, ","),
		"urgency":   strconv.FormatFloat(a.Urgency, 'f', -1, 64),
		"sentiment": strconv.FormatFloat(a.Sentiment, 'f', -1, 64),
	}
}

func analyzeText(text string) Analysis {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool)
	a := Analysis{Sentiment: Sentiment(text)}
	for _, token := range tokens {
		weight, urgent := urgencyKeywords[token]
		if workKeywords[token] {
			a.Work = true
		}
		if !urgent {
			continue
		}
		if weight > a.Urgency {
			a.Urgency = weight
		}
		if !seen[token] {
			seen[token] = true
			a.Keywords = append(a.Keywords, token)
		}
	}
	sort.Strings(a.Keywords)
	return a
}
