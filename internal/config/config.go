package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted by INFERENCE_PROVIDER.
const (
	ProviderHeuristic = "heuristic"
	ProviderGroq      = "groq"
	ProviderGemini    = "gemini"
)

// InferenceConfig selects and tunes the suggestion backend.
type InferenceConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config keeps runtime settings for the app.
type Config struct {
	TelegramToken   string          `yaml:"telegram_token"`
	OwnerChatID     int64           `yaml:"owner_chat_id"`
	DatabaseURL     string          `yaml:"database_url"`
	DigestInterval  time.Duration   `yaml:"digest_interval"`
	DigestTime      string          `yaml:"digest_time"`
	InsightInterval time.Duration   `yaml:"insight_interval"`
	MaxContext      int             `yaml:"max_context"`
	LogLevel        string          `yaml:"log_level"`
	LogDev          bool            `yaml:"log_dev"`
	Inference       InferenceConfig `yaml:"inference"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DatabaseURL:     "smart_todo.db",
		DigestInterval:  5 * time.Hour,
		InsightInterval: 30 * time.Minute,
		MaxContext:      20,
		LogLevel:        "info",
		Inference: InferenceConfig{
			Provider: ProviderHeuristic,
			Timeout:  10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()

	switch cfg.Inference.Provider {
	case ProviderHeuristic:
	case ProviderGroq, ProviderGemini:
		if cfg.Inference.APIKey == "" {
			return cfg, fmt.Errorf("INFERENCE_API_KEY is required for provider %q", cfg.Inference.Provider)
		}
	default:
		return cfg, fmt.Errorf("unknown inference provider %q", cfg.Inference.Provider)
	}

	return cfg, nil
}

// ValidateBot checks the settings only the Telegram surface needs.
func (c Config) ValidateBot() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN is required"))
	}
	if c.OwnerChatID == 0 {
		errs = append(errs, errors.New("OWNER_CHAT_ID is required"))
	}
	return errors.Join(errs...)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := env("TELEGRAM_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := env("OWNER_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OWNER_CHAT_ID: %w", err)
		}
		c.OwnerChatID = id
	}
	if v := env("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if d := parseDuration(env("DIGEST_INTERVAL_HOURS"), time.Hour); d > 0 {
		c.DigestInterval = d
	}
	if v := env("DIGEST_TIME"); v != "" {
		c.DigestTime = v
	}
	if d := parseDuration(env("INSIGHT_INTERVAL_MINUTES"), time.Minute); d > 0 {
		c.InsightInterval = d
	}
	if v := env("SUGGEST_MAX_CONTEXT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SUGGEST_MAX_CONTEXT: %w", err)
		}
		c.MaxContext = n
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := env("LOG_DEV"); v != "" {
		c.LogDev, _ = strconv.ParseBool(v)
	}
	if v := env("INFERENCE_PROVIDER"); v != "" {
		c.Inference.Provider = strings.ToLower(v)
	}
	if v := env("INFERENCE_API_KEY"); v != "" {
		c.Inference.APIKey = v
	}
	if v := env("INFERENCE_MODEL"); v != "" {
		c.Inference.Model = v
	}
	if v := env("INFERENCE_BASE_URL"); v != "" {
		c.Inference.BaseURL = v
	}
	if d := parseDuration(env("INFERENCE_TIMEOUT_SECONDS"), time.Second); d > 0 {
		c.Inference.Timeout = d
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DatabaseURL == "" {
		c.DatabaseURL = def.DatabaseURL
	}
	if c.DigestInterval <= 0 {
		c.DigestInterval = def.DigestInterval
	}
	if c.InsightInterval <= 0 {
		c.InsightInterval = def.InsightInterval
	}
	if c.MaxContext <= 0 {
		c.MaxContext = def.MaxContext
	}
	if c.Inference.Provider == "" {
		c.Inference.Provider = def.Inference.Provider
	}
	if c.Inference.Timeout <= 0 {
		c.Inference.Timeout = def.Inference.Timeout
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseDuration reads a positive whole number of units. Anything else is 0.
func parseDuration(raw string, unit time.Duration) time.Duration {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * unit
}
