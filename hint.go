package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/logistics-puzzle/internal/game"
)

var hintCmd = &cobra.Command{
	Use:   "hint <mode> <scenario>",
	Short: "Print a random hint for a scenario",
	Long: `Picks one of the scenario's hints at random.

Examples:
  puzzle hint tasks warehouse
  puzzle hint flow order-to-delivery`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		h, err := game.NewEngine(cat, nil).HintFor(args[0], args[1])
		if err != nil {
			return fmt.Errorf("%s/%s: %w", args[0], args[1], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}
