package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/migration"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/bootstrap"
)

var steps int

func NewCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the database schema. MySQL uses versioned scripts; SQLite is migrated from the models.`,
	}

	cmd.AddCommand(
		newUpCommand(opts),
		newDownCommand(opts),
		newStatusCommand(opts),
	)

	return cmd
}

func newUpCommand(opts *bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(opts, func(rt *bootstrap.Runtime, s migration.Strategy) error {
				rt.Logger.Infow("running up migrations", "strategy", s.Name())
				if err := s.Up(rt.DB); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				rt.Logger.Infow("migrations completed successfully")
				return nil
			})
		},
	}
}

func newDownCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(opts, func(rt *bootstrap.Runtime, s migration.Strategy) error {
				rt.Logger.Infow("running down migrations", "strategy", s.Name(), "steps", steps)
				if err := s.Down(rt.DB, steps); err != nil {
					return fmt.Errorf("down migration failed: %w", err)
				}
				rt.Logger.Infow("down migration completed successfully")
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand(opts *bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(opts, func(rt *bootstrap.Runtime, s migration.Strategy) error {
				version, err := s.Version(rt.DB)
				if err != nil {
					return fmt.Errorf("failed to get migration version: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "\nMigration Status:\n")
				fmt.Fprintf(out, "  Driver:          %s\n", rt.Config.Database.Driver)
				fmt.Fprintf(out, "  Strategy:        %s\n", s.Name())
				fmt.Fprintf(out, "  Current Version: %d\n", version)

				return s.Status(rt.DB)
			})
		},
	}
}

func withStrategy(opts *bootstrap.Options, fn func(rt *bootstrap.Runtime, s migration.Strategy) error) error {
	rt, err := bootstrap.Init(*opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	return fn(rt, migration.ForDriver(rt.Config.Database.Driver, rt.Logger))
}
