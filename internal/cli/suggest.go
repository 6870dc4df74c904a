package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smart-todo/internal/suggest"
)

func newSuggestCmd(opts *options) *cobra.Command {
	var (
		flags draftFlags
		title string
		save  bool
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Fill in a task draft from the stored context",
		Long: `Builds a draft from the flags, asks the configured provider for the
missing fields and prints the merged draft. Values given on the command line
are never replaced. With --save the merged draft is stored as a task.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := flags.draft(cmd, title)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				session := suggest.NewSession(draft)
				defer session.Close()

				outcome, err := a.engine.Suggest(ctx, session)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printDraft(out, outcome.Draft)
				printReport(out, outcome.Report)

				if !save {
					return nil
				}
				task, err := a.tasks.Create(ctx, outcome.Draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created task #%d\n", task.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	flags.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "Store the merged draft as a task")
	return cmd
}

func printDraft(out io.Writer, d suggest.TaskDraft) {
	fmt.Fprintf(out, "Title:       %s\n", dash(d.Title))
	fmt.Fprintf(out, "Description: %s\n", dash(d.Description))
	deadline := ""
	if d.Deadline != nil {
		deadline = d.Deadline.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(out, "Deadline:    %s\n", dash(deadline))
	category := ""
	if d.CategoryID != nil {
		category = fmt.Sprintf("#%d", *d.CategoryID)
	}
	fmt.Fprintf(out, "Category:    %s\n", dash(category))
	fmt.Fprintf(out, "Priority:    %.2f\n", d.PriorityScore)
}

func printReport(out io.Writer, r suggest.MergeReport) {
	if len(r.Applied) == 0 {
		fmt.Fprintln(out, "Suggested:   nothing new")
	} else {
		fmt.Fprintf(out, "Suggested:   %s\n", strings.Join(r.Applied, ", "))
	}
	if r.UnresolvedCategory != "" {
		fmt.Fprintf(out, "Warning:     category %q does not exist; create it with \"smarttodo category add\"\n", r.UnresolvedCategory)
	}
}
