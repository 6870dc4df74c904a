package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smart-todo/internal/model"
)

func newContextCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Record and list context entries",
	}

	var source string
	add := &cobra.Command{
		Use:   "add [text...]",
		Short: "Append a context entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceType, err := model.ParseSourceType(source)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				entry, err := a.contexts.Append(ctx, strings.Join(args, " "), sourceType)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved context #%d (%s)\n", entry.ID, entry.SourceType)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&source, "source", "s", string(model.SourceNote), "Source type: note, email, whatsapp or meeting")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List context entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				entries, err := a.contexts.List(ctx)
				if err != nil {
					return err
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No context entries.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSOURCE\tCREATED\tKEYWORDS\tSENTIMENT\tCONTENT")
				for _, e := range entries {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						e.ID, e.SourceType, e.CreatedAt.Format("2006-01-02 15:04"),
						dash(e.ProcessedInsights["keywords"]), dash(e.ProcessedInsights["sentiment"]),
						oneLine(e.Content, 60))
				}
				return w.Flush()
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")

	cmd.AddCommand(add, list)
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string, maxLen int) string {
	clean := strings.Join(strings.Fields(s), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	return string(runes[:maxLen-1]) + "…"
}
