package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	catalogPath string
	policyPaths []string
	jsonOutput  bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "mechforge - loadout configuration engine",
		Long: `forge builds and checks vehicle loadouts against a reference catalog.

Features:
  - Equip feasibility checks with typed failure reasons
  - Auto placement that relocates equipped items when needed
  - Armor distribution by location priority
  - Starlark loadout scripts with undo
  - Rego policy checks of the finished loadout
  - SQLite catalog mirror and command journal`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file, overrides the config (default: builtin catalog)")
	rootCmd.PersistentFlags().StringSliceVar(&policyPaths, "policy", nil, "extra .rego/.json policy files or directories")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newAutoAddCommand())
	rootCmd.AddCommand(newJournalCommand())
	rootCmd.AddCommand(newPoliciesCommand())

	return rootCmd
}
