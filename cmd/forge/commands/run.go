package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/script"
)

func newRunCommand() *cobra.Command {
	var (
		chassisID string
		dbPath    string
		vars      map[string]string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a Starlark loadout script",
		Long: `Build a loadout by running a Starlark script against an empty chassis.

The script calls add, auto_add, armor, distribute, upgrade and the other
loadout builtins. Output of print() is written to stdout followed by a
summary of the resulting loadout and the policy findings.`,
		Example: `  # Build a loadout on the std50 chassis
  forge run brawler.star --chassis std50

  # Pass variables and journal every edit
  forge run build.star --chassis omni55 --var armor=200 --db forge.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}

			s, err := openSession(ctx, dbPath)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			wb, err := s.newWorkbench(chassisID)
			if err != nil {
				return err
			}

			input := make(map[string]interface{}, len(vars))
			for k, v := range vars {
				input[k] = v
			}

			log.Info().
				Str("script", args[0]).
				Str("chassis", chassisID).
				Str("session", wb.SessionID().String()).
				Msg("Running script")

			res, runErr := script.NewEvaluator(s.cfg.Engine.ScriptTimeout).Run(ctx, wb, args[0], string(source), input)
			if res != nil {
				for _, line := range res.Printed {
					fmt.Println(line)
				}
			}
			if runErr != nil {
				if r, ok := model.ResultOf(runErr); ok {
					log.Warn().Str("reason", string(r.Type)).Msg("Script stopped on a rejected edit")
				}
				return runErr
			}
			log.Debug().Dur("duration", res.ExecutionTime).Msg("Script finished")
			return s.finish(ctx, wb, "run", strict)
		},
	}

	cmd.Flags().StringVar(&chassisID, "chassis", "", "chassis id of the new loadout")
	cmd.Flags().StringVar(&dbPath, "db", "", "journal edits to this database")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "script variables (key=value)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a policy reports an error")
	_ = cmd.MarkFlagRequired("chassis")

	return cmd
}
