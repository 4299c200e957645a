package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mechforge/mechforge/pkg/policy"
)

func newPoliciesCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List the loadout policies",
		Long: `List the builtin policies and the custom policies found in the configured
and --policy paths.

With --watch the custom policy files are reloaded whenever they change and
the list is printed again. A file that fails to compile keeps the previous
set in place.`,
		Example: `  forge policies --policy ./league
  forge policies --policy ./league --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			eng, err := newPolicyEngine(ctx, cfg, log.Logger)
			if err != nil {
				return err
			}
			if err := printPolicies(eng.ListPolicies()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			paths := append(append([]string(nil), cfg.Policy.Paths...), policyPaths...)
			if len(paths) == 0 {
				return fmt.Errorf("--watch needs policy paths")
			}
			loader := policy.NewLoader(log.Logger)
			err = loader.Watch(ctx, paths, func(ps []policy.Policy) error {
				if err := eng.ReplacePolicies(ctx, ps); err != nil {
					return err
				}
				return printPolicies(eng.ListPolicies())
			})
			if err != nil {
				return err
			}
			defer loader.StopWatching()

			log.Info().Strs("paths", paths).Msg("Watching policies, press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload policies when their files change")
	return cmd
}

func printPolicies(ps []policy.Policy) error {
	if jsonOutput {
		return printJSON(ps)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range ps {
		state := "enabled"
		if !p.Enabled {
			state = "disabled"
		}
		source := p.Source
		if source == "" {
			source = "builtin"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Severity, state, source)
	}
	return w.Flush()
}
