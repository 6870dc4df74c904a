package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"smart-todo/internal/repository"
	"smart-todo/internal/transfer"
)

func newExportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tasks, err := a.tasks.List(ctx, repository.TaskFilter{})
				if err != nil {
					return err
				}
				data, err := transfer.Export(tasks)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(tasks), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Create or update tasks from a JSON array (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				summary, err := a.reconciler.Import(ctx, data)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printSummary(out io.Writer, s transfer.Summary) {
	fmt.Fprintf(out, "Created: %d\nUpdated: %d\nFailed:  %d\n", s.Created, s.Updated, s.Failed())
	for _, f := range s.Failures {
		if f.ID != nil {
			fmt.Fprintf(out, "  record %d (id %d): %s\n", f.Index, *f.ID, f.Reason)
			continue
		}
		fmt.Fprintf(out, "  record %d: %s\n", f.Index, f.Reason)
	}
}
