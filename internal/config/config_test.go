package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "OWNER_CHAT_ID", "DATABASE_URL", "DIGEST_INTERVAL_HOURS", "DIGEST_TIME",
		"INSIGHT_INTERVAL_MINUTES", "SUGGEST_MAX_CONTEXT", "LOG_LEVEL", "LOG_DEV",
		"INFERENCE_PROVIDER", "INFERENCE_API_KEY", "INFERENCE_MODEL",
		"INFERENCE_BASE_URL", "INFERENCE_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "smart_todo.db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Hour, cfg.DigestInterval)
	assert.Equal(t, 30*time.Minute, cfg.InsightInterval)
	assert.Equal(t, 20, cfg.MaxContext)
	assert.Equal(t, ProviderHeuristic, cfg.Inference.Provider)
	assert.Equal(t, 10*time.Second, cfg.Inference.Timeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_url: from-file.db\nmax_context: 7\ninference:\n  provider: groq\n  api_key: file-key\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("SUGGEST_MAX_CONTEXT", "12")
	t.Setenv("INFERENCE_MODEL", "llama-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file.db", cfg.DatabaseURL)
	assert.Equal(t, 12, cfg.MaxContext)
	assert.Equal(t, ProviderGroq, cfg.Inference.Provider)
	assert.Equal(t, "file-key", cfg.Inference.APIKey)
	assert.Equal(t, "llama-test", cfg.Inference.Model)
}

func TestLoadRejectsRemoteProviderWithoutKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("INFERENCE_PROVIDER", "gemini")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INFERENCE_API_KEY")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("INFERENCE_PROVIDER", "oracle")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadIgnoresBadIntervals(t *testing.T) {
	clearEnv(t)
	t.Setenv("DIGEST_INTERVAL_HOURS", "-3")
	t.Setenv("INSIGHT_INTERVAL_MINUTES", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Hour, cfg.DigestInterval)
	assert.Equal(t, 30*time.Minute, cfg.InsightInterval)
}

func TestValidateBot(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateBot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
	assert.Contains(t, err.Error(), "OWNER_CHAT_ID")

	cfg.TelegramToken = "token"
	cfg.OwnerChatID = 42
	assert.NoError(t, cfg.ValidateBot())
}
