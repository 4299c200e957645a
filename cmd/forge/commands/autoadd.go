package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mechforge/mechforge/pkg/model"
)

func newAutoAddCommand() *cobra.Command {
	var (
		chassisID string
		dbPath    string
		itemIDs   []string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "autoadd",
		Short: "Place items on an empty chassis automatically",
		Long: `Equip each item wherever it fits, in the given order.

When no location has room the resolver moves up to two equipped items to
make space. Items that cannot be placed are reported with the reason and
the remaining items are still tried.`,
		Example: `  forge autoadd --chassis std50 --item ml --item ml --item ac5 --item ac5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, dbPath)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			wb, err := s.newWorkbench(chassisID)
			if err != nil {
				return err
			}

			failed := 0
			for _, id := range itemIDs {
				plan, err := wb.AutoAdd(ctx, id)
				switch r, ok := model.ResultOf(err); {
				case err == nil:
					fmt.Printf("✓ %s: %s\n", id, plan)
				case ok:
					failed++
					fmt.Printf("✗ %s: %s\n", id, r.Type.Message())
				default:
					return err
				}
			}

			if err := s.finish(ctx, wb, "autoadd", strict); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d items could not be placed", failed, len(itemIDs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chassisID, "chassis", "", "chassis id of the new loadout")
	cmd.Flags().StringSliceVarP(&itemIDs, "item", "i", nil, "item ids to place, in order")
	cmd.Flags().StringVar(&dbPath, "db", "", "journal edits to this database")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a policy reports an error")
	_ = cmd.MarkFlagRequired("chassis")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}
