package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"smart-todo/internal/model"
)

// ErrDuplicateCategory is returned by Create when the name is taken.
var ErrDuplicateCategory = errors.New("category already exists")

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create stores a new category. Categories are only ever created explicitly.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	db := r.db.WithContext(ctx)

	var existing model.Category
	err := db.Where("name = ?", name).First(&existing).Error
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find category: %w", err)
	}

	category := model.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// IncrementUsage bumps the usage counter of the category by one.
func (r *CategoryRepository) IncrementUsage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).
		UpdateColumn("usage_frequency", gorm.Expr("usage_frequency + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment category usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
