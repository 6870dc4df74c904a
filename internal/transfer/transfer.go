// Package transfer exports tasks to portable JSON and imports them back,
// deciding per record whether to update an existing task or create one.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
	"smart-todo/internal/suggest"
)

// Record is the portable form of a task. Field presence matters, order
// does not.
type Record struct {
	ID            *uint   `json:"id,omitempty"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	Deadline      *string `json:"deadline,omitempty"`
	CategoryID    *uint   `json:"category_id,omitempty"`
	PriorityScore float64 `json:"priority_score"`
	Status        string  `json:"status"`
}

// TaskStore is the part of the task store the importer needs.
type TaskStore interface {
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
}

// CategoryLister reads the known categories.
type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// Failure describes one record that could not be imported.
type Failure struct {
	Index  int
	ID     *uint
	Reason string
}

// Summary is the outcome of an import.
type Summary struct {
	Created  int
	Updated  int
	Failures []Failure
}

// Failed returns the number of records that were not imported.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// Export serializes tasks without losing any field.
func Export(tasks []model.Task) ([]byte, error) {
	records := make([]Record, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, toRecord(task))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

func toRecord(task model.Task) Record {
	id := task.ID
	rec := Record{
		ID:            &id,
		Title:         task.Title,
		PriorityScore: task.PriorityScore,
		Status:        string(task.Status),
	}
	if task.Description != "" {
		description := task.Description
		rec.Description = &description
	}
	if task.Deadline != nil {
		deadline := task.Deadline.Format(time.RFC3339Nano)
		rec.Deadline = &deadline
	}
	if task.CategoryID != nil {
		categoryID := *task.CategoryID
		rec.CategoryID = &categoryID
	}
	return rec
}

// Reconciler imports exported task collections.
type Reconciler struct {
	tasks      TaskStore
	categories CategoryLister
	logger     *zap.Logger
}

func NewReconciler(tasks TaskStore, categories CategoryLister, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{tasks: tasks, categories: categories, logger: logger}
}

// Import applies every record in data, one at a time. A record that fails is
// reported in the summary and the rest still go through. Only input that is
// not a JSON array, or an unreachable category store, fails the whole call.
func (r *Reconciler) Import(ctx context.Context, data []byte) (Summary, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return Summary{}, fmt.Errorf("decode import: expected a JSON array of tasks: %w", err)
	}

	categories, err := r.categories.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load categories: %w", err)
	}
	known := make(map[uint]bool, len(categories))
	for _, category := range categories {
		known[category.ID] = true
	}

	var summary Summary
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rec, task, err := decodeRecord(raw, known)
		if err != nil {
			summary.Failures = append(summary.Failures, Failure{Index: i, ID: rec.ID, Reason: err.Error()})
			continue
		}

		created, err := r.apply(ctx, rec, task)
		if err != nil {
			r.logger.Warn("import record failed", zap.Int("index", i), zap.Error(err))
			summary.Failures = append(summary.Failures, Failure{Index: i, ID: rec.ID, Reason: err.Error()})
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	r.logger.Info("import finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed()))
	return summary, nil
}

// apply updates the task when its id exists in the store, otherwise creates
// it under a fresh id. It reports whether a task was created.
func (r *Reconciler) apply(ctx context.Context, rec Record, task *model.Task) (bool, error) {
	if rec.ID != nil {
		_, err := r.tasks.FindByID(ctx, *rec.ID)
		switch {
		case err == nil:
			task.ID = *rec.ID
			if err := r.tasks.Update(ctx, task); err != nil {
				return false, err
			}
			return false, nil
		case !errors.Is(err, repository.ErrNotFound):
			return false, fmt.Errorf("find task %d: %w", *rec.ID, err)
		}
	}

	task.ID = 0
	if err := r.tasks.Create(ctx, task); err != nil {
		return false, err
	}
	return true, nil
}

func decodeRecord(raw json.RawMessage, knownCategories map[uint]bool) (Record, *model.Task, error) {
	rec := Record{PriorityScore: suggest.DefaultPriority}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, nil, fmt.Errorf("decode record: %w", err)
	}

	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return rec, nil, errors.New("title is required")
	}

	status, err := model.ParseStatus(rec.Status)
	if err != nil {
		return rec, nil, err
	}

	task := &model.Task{
		Title:         rec.Title,
		PriorityScore: suggest.ClampPriority(rec.PriorityScore),
		Status:        status,
	}
	if rec.Description != nil {
		task.Description = *rec.Description
	}
	if rec.Deadline != nil {
		deadline, err := suggest.ParseDeadline(*rec.Deadline)
		if err != nil {
			return rec, nil, fmt.Errorf("deadline: %w", err)
		}
		task.Deadline = &deadline
	}
	if rec.CategoryID != nil {
		if !knownCategories[*rec.CategoryID] {
			return rec, nil, fmt.Errorf("unknown category %d", *rec.CategoryID)
		}
		categoryID := *rec.CategoryID
		task.CategoryID = &categoryID
	}
	return rec, task, nil
}
