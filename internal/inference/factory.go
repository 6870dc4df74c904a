package inference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smart-todo/internal/config"
	"smart-todo/internal/suggest"
)

// New builds the provider selected in cfg. Remote providers fall back to
// the heuristic when they fail.
func New(ctx context.Context, cfg config.InferenceConfig, logger *zap.Logger) (suggest.Provider, error) {
	heuristic := NewHeuristicProvider()

	var primary interface {
		suggest.Provider
		Name() string
	}
	switch cfg.Provider {
	case config.ProviderHeuristic, "":
		return heuristic, nil
	case config.ProviderGroq:
		primary = NewChatProvider(ChatConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	case config.ProviderGemini:
		p, err := NewGenAIProvider(ctx, GenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		primary = p
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}

	logger.Info("inference provider ready", zap.String("provider", primary.Name()))
	return &FallbackProvider{Primary: primary, Secondary: heuristic, Logger: logger}, nil
}
