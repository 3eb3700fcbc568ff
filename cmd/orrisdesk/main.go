package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/catalog"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/migrate"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/server"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/sweep"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/token"
)

func main() {
	opts := &bootstrap.Options{}

	rootCmd := &cobra.Command{
		Use:          "orrisdesk",
		Short:        "Orris Desk - Discord ticket desk for paid subscriptions",
		Long:         `Orris Desk runs purchase tickets on Discord, turns confirmed payments into subscriptions and reminds members before they expire.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "", "Environment (development, test, production)")
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	rootCmd.AddCommand(
		server.NewCommand(opts),
		migrate.NewCommand(opts),
		sweep.NewCommand(opts),
		catalog.NewCommand(opts),
		token.NewCommand(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
