package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newJournalCommand() *cobra.Command {
	var (
		dbPath    string
		loadoutID string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the command journal",
		Long: `List the journaled commands of the database, oldest first.

Each row shows what happened to a command (applied, undone, redone or
rejected), the loadout it edited and the loadout mass afterwards.`,
		Example: `  forge journal --db forge.db
  forge journal --db forge.db --loadout 6f1c... --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := dbPath
			if path == "" {
				path = cfg.Database.Path
			}
			if path == "" {
				return fmt.Errorf("no database configured, use --db")
			}
			store, err := openStore(ctx, path, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer store.Close()

			var filter *string
			if loadoutID != "" {
				filter = &loadoutID
			}
			entries, err := store.ListJournal(ctx, filter, limit, offset)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(entries)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tLOADOUT\tACTION\tCOMMAND\tRESULT\tMASS")
			for _, e := range entries {
				result := "-"
				if e.Result != nil {
					result = *e.Result
				}
				fmt.Fprintf(w, "%d\t%s\t%.8s\t%s\t%s\t%s\t%.2f\n",
					e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.LoadoutID, e.Action, e.Description, result, e.Mass)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides the config)")
	cmd.Flags().StringVar(&loadoutID, "loadout", "", "only show entries of this loadout")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of entries to skip")

	return cmd
}
