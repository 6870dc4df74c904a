package suggest

import (
	"strings"
	"time"

	"smart-todo/internal/model"
)

// DefaultPriority is the priority of a fresh draft. Merge treats it as
// "not chosen yet".
const DefaultPriority = 0.5

// TaskDraft is a task under edit. It is a plain value: engine calls take one
// and return a new one.
type TaskDraft struct {
	Title         string
	Description   string
	Deadline      *time.Time
	CategoryID    *uint
	PriorityScore float64
	Status        model.Status
}

// NewDraft returns an empty draft with default priority and status.
func NewDraft(title string) TaskDraft {
	return TaskDraft{
		Title:         title,
		PriorityScore: DefaultPriority,
		Status:        model.StatusPending,
	}
}

// DraftFromTask opens a persisted task for editing.
func DraftFromTask(task model.Task) TaskDraft {
	status := task.Status
	if status == "" {
		status = model.StatusPending
	}
	return TaskDraft{
		Title:         task.Title,
		Description:   task.Description,
		Deadline:      cloneTime(task.Deadline),
		CategoryID:    cloneUint(task.CategoryID),
		PriorityScore: ClampPriority(task.PriorityScore),
		Status:        status,
	}
}

// Empty reports whether the draft carries no text to infer from.
func (d TaskDraft) Empty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Description) == ""
}

// Clone returns a deep copy so callers never share pointer fields.
func (d TaskDraft) Clone() TaskDraft {
	d.Deadline = cloneTime(d.Deadline)
	d.CategoryID = cloneUint(d.CategoryID)
	return d
}

// ClampPriority forces a score into [0,1]. NaN becomes the default.
func ClampPriority(v float64) float64 {
	switch {
	case v != v:
		return DefaultPriority
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUint(u *uint) *uint {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}
