package service

import (
	"context"
	"fmt"
	"strings"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
)

// ContextService records and lists context entries.
type ContextService struct {
	repo *repository.ContextRepository
}

func NewContextService(repo *repository.ContextRepository) *ContextService {
	return &ContextService{repo: repo}
}

// Append stores a new entry. Content is kept as written; it only has to
// contain something besides whitespace.
func (s *ContextService) Append(ctx context.Context, content string, source model.SourceType) (*model.ContextEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: context content is required", ErrValidation)
	}
	if _, err := model.ParseSourceType(string(source)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.repo.Append(ctx, content, source)
}

// List returns all entries, newest first.
func (s *ContextService) List(ctx context.Context) ([]model.ContextEntry, error) {
	return s.repo.List(ctx)
}
