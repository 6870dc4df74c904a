// Package cli is the command line surface of smart todo.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "smarttodo",
		Short: "Smart todo - context-driven task suggestions",
		Long: `smarttodo keeps tasks, categories and context entries (notes, emails,
chat snippets, meeting text) and suggests the missing fields of a task
draft from that context.

Run "smarttodo serve" to start the Telegram bot and the background jobs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Optional YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newContextCmd(opts),
		newCategoryCmd(opts),
		newTaskCmd(opts),
		newSuggestCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newInsightsCmd(opts),
	)
	return root
}

// Execute runs the root command until ctx is cancelled.
func Execute(ctx context.Context, version string) error {
	root := NewRootCmd()
	root.Version = version
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// withApp wires the components for one command run and releases them after.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
