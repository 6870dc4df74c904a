package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
	"smart-todo/internal/suggest"
)

// draftFlags are the task fields shared by "task add" and "suggest".
type draftFlags struct {
	description string
	deadline    string
	categoryID  uint
	priority    float64
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "Deadline, e.g. 2025-07-01 or 2025-07-01T17:00")
	cmd.Flags().UintVar(&f.categoryID, "category", 0, "Category id")
	cmd.Flags().Float64VarP(&f.priority, "priority", "p", suggest.DefaultPriority, "Priority from 0 to 1")
}

func (f *draftFlags) draft(cmd *cobra.Command, title string) (suggest.TaskDraft, error) {
	draft := suggest.NewDraft(title)
	draft.Description = f.description
	draft.PriorityScore = f.priority
	if f.deadline != "" {
		deadline, err := suggest.ParseDeadline(f.deadline)
		if err != nil {
			return draft, fmt.Errorf("--deadline: %w", err)
		}
		draft.Deadline = &deadline
	}
	if cmd.Flags().Changed("category") {
		id := f.categoryID
		draft.CategoryID = &id
	}
	return draft, nil
}

func newTaskCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskListCmd(opts),
		newTaskAddCmd(opts),
		newTaskDoneCmd(opts),
		newTaskDeleteCmd(opts),
	)
	return cmd
}

func newTaskListCmd(opts *options) *cobra.Command {
	var (
		status      string
		categoryID  uint
		minPriority float64
		search      string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter repository.TaskFilter
			if cmd.Flags().Changed("status") {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = &s
			}
			if cmd.Flags().Changed("category") {
				filter.CategoryID = &categoryID
			}
			if cmd.Flags().Changed("min-priority") {
				filter.MinPriority = &minPriority
			}
			if search != "" {
				filter.Query = &search
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tasks, err := a.tasks.List(ctx, filter)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), tasks)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only tasks in this status")
	cmd.Flags().UintVar(&categoryID, "category", 0, "Only tasks in this category id")
	cmd.Flags().Float64Var(&minPriority, "min-priority", 0, "Only tasks with at least this priority")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only tasks whose title, description or category contains this text")
	return cmd
}

func newTaskAddCmd(opts *options) *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task as given, without suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := flags.draft(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := a.tasks.Create(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", task.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTaskDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.tasks.SetStatus(ctx, id, model.StatusCompleted); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed task #%d\n", id)
				return nil
			})
		},
	}
}

func newTaskDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.tasks.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
				return nil
			})
		},
	}
}

func printTasks(out io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "No tasks.")
		return err
	}
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRI\tDUE\tCATEGORY\tTITLE")
	for _, t := range tasks {
		due := "-"
		if t.Deadline != nil {
			due = t.Deadline.Format("2006-01-02 15:04")
		}
		category := "-"
		if t.CategoryID != nil {
			category = strconv.FormatUint(uint64(*t.CategoryID), 10)
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\t%s\n", t.ID, t.Status, t.PriorityScore, due, category, oneLine(t.Title, 60))
	}
	return w.Flush()
}

func parseTaskID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return uint(id), nil
}
