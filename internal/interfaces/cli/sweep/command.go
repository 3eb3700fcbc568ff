package sweep

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/bootstrap"
)

// NewCommand returns `sweep`, which runs one reminder and expiry pass and
// exits. It shares the sweep lock with running servers.
func NewCommand(opts *bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Send due reminders and expire lapsed subscriptions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.Init(*opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.Config.Scheduler.JobTimeout())
			defer cancel()

			if err := rt.ConnectRedis(ctx); err != nil {
				return err
			}
			svcs, err := rt.BuildServices()
			if err != nil {
				return err
			}

			res, err := svcs.Subscriptions.Sweep(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if res.Locked {
				fmt.Fprintln(out, "Another process is sweeping; nothing done.")
				return nil
			}
			fmt.Fprintf(out, "Sweep %s: %d due, %d sent, %d failed, %d skipped, %d expired\n",
				res.RunID, res.Due, res.Sent, res.Failed, res.Skipped, res.Expired)
			return nil
		},
	}
}
