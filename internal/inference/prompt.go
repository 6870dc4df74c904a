package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"smart-todo/internal/suggest"
)

const systemPrompt = `You are an assistant for a task management system. Based on the task details and the user's recent context, provide:
- "priority_score": urgency between 0 and 1, where 1 is most urgent.
- "deadline": a suggested deadline in ISO 8601 format (e.g. 2025-07-07T12:00:00Z).
- "description": an improved description that uses the relevant context.
- "category_name": the best matching category name.
Respond with a single JSON object using exactly those keys. Omit a key when you have no good value.`

type promptTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type promptEntry struct {
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
	Content   string `json:"content"`
}

// renderPrompt builds the user message shared by the remote providers.
func renderPrompt(req suggest.Request) (string, error) {
	entries := make([]promptEntry, 0, len(req.ContextEntries))
	for _, entry := range req.ContextEntries {
		entries = append(entries, promptEntry{
			Source:    string(entry.SourceType),
			CreatedAt: entry.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Content:   entry.Content,
		})
	}

	task, err := json.Marshal(promptTask{Title: req.Title, Description: req.Description})
	if err != nil {
		return "", fmt.Errorf("encode task: %w", err)
	}
	contextJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode context: %w", err)
	}
	analysis, err := json.Marshal(Analyze(req.ContextEntries))
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}

	var b strings.Builder
	b.WriteString("Task: ")
	b.Write(task)
	b.WriteString("\nContext entries (newest first): ")
	b.Write(contextJSON)
	b.WriteString("\nContext analysis: ")
	b.Write(analysis)
	return b.String(), nil
}

// decodeContent reads a model reply as JSON. Markdown code fences are
// stripped first. A reply that is not JSON comes back as the plain string
// so the normalizer can reject it.
func decodeContent(text string) any {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return text
	}
	return out
}
