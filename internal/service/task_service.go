package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
	"smart-todo/internal/suggest"
)

// TaskService commits drafts and manages stored tasks.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	logger       *zap.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, logger: logger}
}

// Create persists a new task from draft.
func (s *TaskService) Create(ctx context.Context, draft suggest.TaskDraft) (*model.Task, error) {
	task, err := s.taskFromDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.bumpCategory(ctx, task.CategoryID)

	s.logger.Info("task created", zap.Uint("task_id", task.ID), zap.Float64("priority", task.PriorityScore))
	return task, nil
}

// Update replaces every mutable field of task id with the draft values.
func (s *TaskService) Update(ctx context.Context, id uint, draft suggest.TaskDraft) (*model.Task, error) {
	task, err := s.taskFromDraft(ctx, draft)
	if err != nil {
		return nil, err
	}
	task.ID = id

	previous, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	if !sameCategory(previous.CategoryID, task.CategoryID) {
		s.bumpCategory(ctx, task.CategoryID)
	}

	s.logger.Info("task updated", zap.Uint("task_id", task.ID))
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.List(ctx, filter)
}

// SetStatus moves a task to another lifecycle state.
func (s *TaskService) SetStatus(ctx context.Context, id uint, status model.Status) (*model.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Status = status
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", zap.Uint("task_id", id))
	return nil
}

func (s *TaskService) taskFromDraft(ctx context.Context, draft suggest.TaskDraft) (*model.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	status := draft.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if draft.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *draft.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown category %d", ErrValidation, *draft.CategoryID)
			}
			return nil, err
		}
	}

	d := draft.Clone()
	return &model.Task{
		Title:         title,
		Description:   d.Description,
		Deadline:      d.Deadline,
		CategoryID:    d.CategoryID,
		PriorityScore: suggest.ClampPriority(d.PriorityScore),
		Status:        status,
	}, nil
}

// bumpCategory counts a use of the category. A failure here does not undo
// the task write, so it is only logged.
func (s *TaskService) bumpCategory(ctx context.Context, categoryID *uint) {
	if categoryID == nil {
		return
	}
	if err := s.categoryRepo.IncrementUsage(ctx, *categoryID); err != nil {
		s.logger.Warn("category usage not recorded", zap.Uint("category_id", *categoryID), zap.Error(err))
	}
}

func sameCategory(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
