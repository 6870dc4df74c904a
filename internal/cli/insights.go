package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInsightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Derive keyword insights for unprocessed context entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				n, err := a.insights.ProcessPending(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d context entries\n", n)
				return nil
			})
		},
	}
}
