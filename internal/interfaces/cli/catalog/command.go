package catalog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appcatalog "github.com/orris-inc/orrisdesk/internal/application/catalog"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/repository"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
	"github.com/orris-inc/orrisdesk/internal/shared/services/markdown"
)

var file string

func NewCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage panels, plans and payment methods",
	}

	cmd.AddCommand(newImportCommand(opts))

	return cmd
}

func newImportCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed guild settings and the catalog from a YAML file",
		Long:  `Read guilds, panels, plans, payment methods and price overrides from a YAML file and write them in one transaction. Entries with an id update the existing row.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open catalog file: %w", err)
			}
			defer f.Close()

			doc, err := appcatalog.ParseImportFile(f)
			if err != nil {
				return err
			}

			rt, err := bootstrap.Init(*opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			importer := appcatalog.NewImporter(
				repository.NewCatalogRepository(rt.DB),
				repository.NewGuildSettingsRepository(rt.DB),
				db.NewTransactionManager(rt.DB),
				markdown.NewMarkdownService(),
				rt.Logger.Named("catalog"),
			)
			res, err := importer.Import(cmd.Context(), doc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d guild(s), %d panel(s), %d plan(s), %d payment method(s), %d override(s)\n",
				res.Guilds, res.Panels, res.Plans, res.PaymentMethods, res.Overrides)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the catalog YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
