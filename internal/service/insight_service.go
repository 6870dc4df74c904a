package service

import (
	"context"

	"go.uber.org/zap"

	"smart-todo/internal/inference"
	"smart-todo/internal/repository"
)

// InsightService derives keyword insights for context entries that have
// none yet.
type InsightService struct {
	repo   *repository.ContextRepository
	logger *zap.Logger
}

func NewInsightService(repo *repository.ContextRepository, logger *zap.Logger) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{repo: repo, logger: logger}
}

// ProcessPending analyzes every unprocessed entry and returns how many were
// updated. It stops at the first store error.
func (s *InsightService) ProcessPending(ctx context.Context) (int, error) {
	entries, err := s.repo.ListUnprocessed(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if err := s.repo.SetInsights(ctx, entry.ID, inference.Insights(entry)); err != nil {
			return processed, err
		}
		processed++
	}

	if processed > 0 {
		s.logger.Info("context insights updated", zap.Int("entries", processed))
	}
	return processed, nil
}
