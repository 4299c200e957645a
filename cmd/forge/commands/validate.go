package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mechforge/mechforge/pkg/catalog"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [catalog]",
		Short: "Validate the configuration and a catalog file",
		Long: `Validate the configuration file and a catalog document.

This command checks:
  - YAML syntax and unknown keys
  - Field constraints of items, chassis and upgrades
  - Cross references between definitions
  - The default upgrade selection`,
		Example: `  # Validate the configured catalog
  forge validate --config forge.yaml

  # Validate a specific catalog file
  forge validate ./catalog.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if configPath != "" {
				fmt.Printf("✓ Configuration valid: %s\n", configPath)
			}

			var cat *catalog.Catalog
			if len(args) > 0 {
				cat, err = catalog.Load(args[0])
			} else {
				cat, err = loadCatalog(cfg)
			}
			if err != nil {
				return err
			}

			items, chassis, upgrades := cat.Counts()
			log.Debug().
				Str("source", cat.Source()).
				Int("items", items).
				Int("chassis", chassis).
				Int("upgrades", upgrades).
				Msg("Catalog loaded")
			fmt.Printf("✓ Catalog valid: %s (%d items, %d chassis, %d upgrades)\n", cat.Source(), items, chassis, upgrades)
			return nil
		},
	}
	return cmd
}
