package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list {items|chassis|upgrades}",
		Short:     "List catalog definitions",
		Example:   "  forge list chassis\n  forge list items --json",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"items", "chassis", "upgrades"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			type row struct {
				ID     string  `json:"id"`
				Name   string  `json:"name"`
				Detail string  `json:"detail"`
				Mass   float64 `json:"mass"`
			}
			var rows []row
			switch args[0] {
			case "items":
				for _, it := range cat.Items() {
					rows = append(rows, row{it.ID, it.Name, fmt.Sprintf("%s %d slots", it.Kind, it.Slots), it.Mass})
				}
			case "chassis":
				for _, ch := range cat.ChassisList() {
					rows = append(rows, row{ch.ID, ch.Name, string(ch.Class()), ch.MassMax})
				}
			case "upgrades":
				for _, up := range cat.Upgrades() {
					rows = append(rows, row{up.ID, up.Name, string(up.Type), 0})
				}
			}

			if jsonOutput {
				return printJSON(rows)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\n", r.ID, r.Name, r.Detail, r.Mass)
			}
			return w.Flush()
		},
	}
	return cmd
}
