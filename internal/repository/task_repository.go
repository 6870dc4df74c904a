package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"smart-todo/internal/model"
)

// TaskFilter narrows List results. Nil fields do not filter.
type TaskFilter struct {
	CategoryID  *uint
	Status      *model.Status
	MinPriority *float64
	// Query matches a substring of the title, description or category name,
	// ignoring ASCII case.
	Query *string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// mutableTaskColumns are replaced in full on update.
var mutableTaskColumns = []string{"title", "description", "deadline", "category_id", "priority_score", "status"}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create stores the task and fills in its id and timestamps. A non-zero
// task.ID is ignored so the store always assigns a fresh identifier.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	task.ID = 0
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update replaces every mutable field of the stored task with the values in
// task, then reloads it so timestamps are current.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Task{ID: task.ID}).Select(mutableTaskColumns).Updates(task)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if err := db.First(task, task.ID).Error; err != nil {
		return fmt.Errorf("reload task: %w", notFound(err))
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// List returns tasks ordered by priority (highest first), then creation time.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MinPriority != nil {
		query = query.Where("priority_score >= ?", *filter.MinPriority)
	}
	if filter.Query != nil {
		if q := strings.TrimSpace(*filter.Query); q != "" {
			pattern := "%" + likeEscaper.Replace(q) + "%"
			byCategory := r.db.WithContext(ctx).Model(&model.Category{}).Select("id").Where(`name LIKE ? ESCAPE '\'`, pattern)
			query = query.Where(
				`(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR category_id IN (?))`,
				pattern, pattern, byCategory,
			)
		}
	}

	var tasks []model.Task
	if err := query.Order("priority_score DESC, created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
