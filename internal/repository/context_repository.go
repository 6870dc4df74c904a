package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"smart-todo/internal/model"
)

// ContextRepository stores context entries. Entries are append-only apart
// from their processed insights.
type ContextRepository struct {
	db *gorm.DB
}

func NewContextRepository(db *gorm.DB) *ContextRepository {
	return &ContextRepository{db: db}
}

func (r *ContextRepository) Append(ctx context.Context, content string, source model.SourceType) (*model.ContextEntry, error) {
	entry := model.ContextEntry{Content: content, SourceType: source}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("append context entry: %w", err)
	}
	return &entry, nil
}

// List returns every entry, newest first.
func (r *ContextRepository) List(ctx context.Context) ([]model.ContextEntry, error) {
	var entries []model.ContextEntry
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list context entries: %w", err)
	}
	return entries, nil
}

// ListUnprocessed returns entries that have no insights yet, oldest first.
func (r *ContextRepository) ListUnprocessed(ctx context.Context) ([]model.ContextEntry, error) {
	var entries []model.ContextEntry
	if err := r.db.WithContext(ctx).Where("processed_insights IS NULL").
		Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list unprocessed entries: %w", err)
	}
	return entries, nil
}

// SetInsights records the derived insights of an entry.
func (r *ContextRepository) SetInsights(ctx context.Context, id uint, insights map[string]string) error {
	res := r.db.WithContext(ctx).Model(&model.ContextEntry{ID: id}).
		Select("processed_insights").
		Updates(&model.ContextEntry{ProcessedInsights: insights})
	if res.Error != nil {
		return fmt.Errorf("set insights: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
