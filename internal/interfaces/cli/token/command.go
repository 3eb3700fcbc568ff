package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/auth"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/config"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/bootstrap"
)

var (
	operator string
	guildIDs []string
	ttl      time.Duration
)

// NewCommand returns `token`. Minting only needs the signing secret, so it
// loads the configuration without touching the database.
func NewCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Admin API tokens",
	}

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint an admin API bearer token",
		Long:  `Mint a JWT for the admin API. Without --guild the token is valid for every guild.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.Env, opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			lifetime := cfg.Admin.TokenTTL()
			if ttl > 0 {
				lifetime = ttl
			}

			token, expiresAt, err := auth.NewJWTService(cfg.Admin.JWTSecret, lifetime).Issue(operator, guildIDs)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	issue.Flags().StringVar(&operator, "operator", "", "Name recorded as the actor of admin actions")
	issue.Flags().StringSliceVar(&guildIDs, "guild", nil, "Restrict the token to these guild IDs")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default admin.token_ttl_hours)")
	_ = issue.MarkFlagRequired("operator")

	cmd.AddCommand(issue)
	return cmd
}
