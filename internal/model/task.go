package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the canonical names case-insensitively. An empty
// string yields StatusPending.
func ParseStatus(raw string) (Status, error) {
	value := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return StatusPending, nil
	}
	if !value.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return value, nil
}

// Task represents a single item in the todo list.
type Task struct {
	ID            uint  `gorm:"primaryKey"`
	CategoryID    *uint `gorm:"index"`
	Title         string
	Description   string
	Deadline      *time.Time
	PriorityScore float64 `gorm:"index"`
	Status        Status  `gorm:"size:20;default:PENDING;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
