package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "OWNER_CHAT_ID", "DIGEST_INTERVAL_HOURS", "DIGEST_TIME",
		"INSIGHT_INTERVAL_MINUTES", "SUGGEST_MAX_CONTEXT", "LOG_DEV",
		"INFERENCE_PROVIDER", "INFERENCE_API_KEY", "INFERENCE_MODEL",
		"INFERENCE_BASE_URL", "INFERENCE_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_URL", filepath.Join(dir, "todo.db"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "smarttodo %s", strings.Join(args, " "))
	return out
}

func TestSuggestFromContextAndSave(t *testing.T) {
	setupEnv(t)

	assert.Contains(t, mustRun(t, "category", "add", "Work"), "Created category #1 Work")
	assert.Contains(t, mustRun(t, "context", "add", "--source", "email", "Client", "meeting", "tomorrow,", "urgent"), "Saved context #1 (EMAIL)")

	out := mustRun(t, "suggest", "--title", "Prepare report", "--save")
	assert.Contains(t, out, "Category:    #1")
	assert.Contains(t, out, "Priority:    0.90")
	assert.Contains(t, out, "Created task #1")

	list := mustRun(t, "task", "list")
	assert.Contains(t, list, "Prepare report")
	assert.Contains(t, list, "0.90")

	assert.Contains(t, mustRun(t, "category", "list"), "Work")
}

func TestSuggestKeepsGivenValues(t *testing.T) {
	setupEnv(t)

	mustRun(t, "context", "add", "urgent", "deadline")
	out := mustRun(t, "suggest", "-t", "Renew passport", "-p", "0.3", "--deadline", "2030-01-02")
	assert.Contains(t, out, "Priority:    0.30")
	assert.Contains(t, out, "Deadline:    2030-01-02 00:00")
	assert.NotContains(t, out, "Created task")
}

func TestSuggestRejectsEmptyDraft(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "suggest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draft")
}

func TestTaskLifecycle(t *testing.T) {
	setupEnv(t)

	assert.Contains(t, mustRun(t, "task", "add", "Water plants", "-p", "0.7"), "Created task #1")
	assert.Contains(t, mustRun(t, "task", "done", "1"), "Completed task #1")
	assert.Contains(t, mustRun(t, "task", "list", "--status", "completed"), "Water plants")
	assert.Contains(t, mustRun(t, "task", "list", "--status", "pending"), "No tasks.")
	assert.Contains(t, mustRun(t, "task", "delete", "1"), "Deleted task #1")

	_, err := run(t, "task", "delete", "1")
	assert.Error(t, err)

	_, err = run(t, "task", "add", "Bad", "--category", "9")
	assert.Error(t, err)
}

func TestTaskListSearch(t *testing.T) {
	setupEnv(t)

	mustRun(t, "category", "add", "Errands")
	mustRun(t, "task", "add", "Buy milk", "--category", "1")
	mustRun(t, "task", "add", "Prepare slides", "-d", "Monday meeting")

	out := mustRun(t, "task", "list", "--search", "monday")
	assert.Contains(t, out, "Prepare slides")
	assert.NotContains(t, out, "Buy milk")

	out = mustRun(t, "task", "list", "-q", "errands")
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Prepare slides")

	assert.Contains(t, mustRun(t, "task", "list", "-q", "dentist"), "No tasks.")
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := setupEnv(t)

	mustRun(t, "task", "add", "Pay rent", "--deadline", "2030-05-01")
	mustRun(t, "task", "add", "Call mom")

	file := filepath.Join(dir, "tasks.json")
	mustRun(t, "export", "-o", file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Pay rent"`)

	out := mustRun(t, "import", file)
	assert.Contains(t, out, "Created: 0")
	assert.Contains(t, out, "Updated: 2")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"title":"New"},{"title":"X","category_id":77}]`), 0o600))
	out = mustRun(t, "import", bad)
	assert.Contains(t, out, "Created: 1")
	assert.Contains(t, out, "Failed:  1")
	assert.Contains(t, out, "record 1")
}

func TestInsightsCommand(t *testing.T) {
	setupEnv(t)

	mustRun(t, "context", "add", "-s", "meeting", "deadline", "today")
	mustRun(t, "context", "add", "the", "demo", "went", "great")
	assert.Contains(t, mustRun(t, "insights"), "Processed 2 context entries")
	assert.Contains(t, mustRun(t, "insights"), "Processed 0 context entries")

	list := mustRun(t, "context", "list")
	assert.Contains(t, list, "SENTIMENT")
	assert.Contains(t, list, "deadline,today")
	assert.Contains(t, list, "0.6249")
}

func TestServeRequiresBotSettings(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}
