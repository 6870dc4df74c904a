package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
)

// DigestService builds the periodic summary of open tasks.
type DigestService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewDigestService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *DigestService {
	return &DigestService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// Summary renders open tasks as Telegram HTML: tasks with a deadline first,
// soonest first, then the rest by priority.
func (s *DigestService) Summary(ctx context.Context, now time.Time) (string, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return "", err
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return "", err
	}
	catNames := make(map[uint]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var open []model.Task
	for _, task := range tasks {
		if task.Status != model.StatusCompleted {
			open = append(open, task)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		switch {
		case open[i].Deadline == nil && open[j].Deadline == nil:
			return open[i].PriorityScore > open[j].PriorityScore
		case open[i].Deadline == nil:
			return false
		case open[j].Deadline == nil:
			return true
		default:
			return open[i].Deadline.Before(*open[j].Deadline)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Task digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	if len(open) == 0 {
		builder.WriteString("— no open tasks\n")
	}
	for _, task := range open {
		builder.WriteString(FormatTask(task, catNames, now))
	}

	return strings.TrimSpace(builder.String()), nil
}

// FormatTask renders one task as an HTML block with an overdue/due-soon icon.
func FormatTask(task model.Task, catNames map[uint]string, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.Deadline != nil {
		d := task.Deadline.In(now.Location())
		switch {
		case now.After(d):
			icon = "⚠️"
		case d.Sub(now) <= 48*time.Hour:
			icon = "⏳"
		}
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", icon, task.ID, title))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok && strings.TrimSpace(name) != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(strings.TrimSpace(name))))
		}
	}

	sb.WriteString(fmt.Sprintf("\n   ⚡ priority %.2f · %s", task.PriorityScore, statusLabel(task.Status)))

	if task.Deadline != nil {
		d := task.Deadline.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02 15:04")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d d left", d.Format("2006-01-02 15:04"), daysLeft))
		}
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func statusLabel(status model.Status) string {
	switch status {
	case model.StatusInProgress:
		return "in progress"
	case model.StatusCompleted:
		return "completed"
	default:
		return "pending"
	}
}
