package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mechforge/mechforge/pkg/catalog"
)

func newImportCommand() *cobra.Command {
	var (
		dbPath string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Mirror the catalog into the database",
		Long: `Replace the catalog mirror of the database with the current catalog.

Every item, chassis, upgrade and the default upgrade selection is stored as
a YAML document. The previous mirror is removed in the same transaction.`,
		Example: `  # Mirror the builtin catalog
  forge import --db forge.db

  # Mirror a catalog file and read it back
  forge import --catalog ./catalog.yaml --db forge.db --verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, dbPath)
			if err != nil {
				return err
			}
			defer s.Close(ctx)
			if s.store == nil {
				return fmt.Errorf("no database configured, use --db")
			}

			if err := s.catalog.SaveToStore(ctx, s.store); err != nil {
				return err
			}
			items, chassis, upgrades := s.catalog.Counts()
			log.Info().
				Str("source", s.catalog.Source()).
				Int("items", items).
				Int("chassis", chassis).
				Int("upgrades", upgrades).
				Msg("Catalog imported")
			fmt.Printf("✓ Imported %d items, %d chassis, %d upgrades\n", items, chassis, upgrades)

			if verify {
				mirror, err := catalog.LoadFromStore(ctx, s.store)
				if err != nil {
					return fmt.Errorf("failed to read back catalog: %w", err)
				}
				mi, mc, mu := mirror.Counts()
				if mi != items || mc != chassis || mu != upgrades {
					return fmt.Errorf("mirror mismatch: %d/%d/%d definitions read back", mi, mc, mu)
				}
				fmt.Println("✓ Mirror verified")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides the config)")
	cmd.Flags().BoolVar(&verify, "verify", false, "rebuild the catalog from the mirror after importing")

	return cmd
}
