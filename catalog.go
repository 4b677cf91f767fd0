package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/logistics-puzzle/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the scenario catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modes and their scenarios",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range catalog.Summarize(cat) {
			fmt.Fprintf(out, "%s  %s  (%s, max %d, %d steps)\n", m.ID, m.Title, m.Policy, m.MaxScore, m.TotalSteps)
			for _, sc := range m.Scenarios {
				fmt.Fprintf(out, "    %-20s %s (%d)\n", sc.ID, sc.Title, sc.Steps)
			}
		}
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a catalog file without starting the server",
	Long: `Parses and validates a catalog. With no argument the --catalog flag,
CATALOG_FILE or the embedded catalog is checked.

Examples:
  puzzle catalog validate
  puzzle catalog validate ./scenarios.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.CatalogFile = args[0]
		}
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		steps := 0
		for _, m := range cat.Modes {
			steps += m.TotalSteps()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d modes, %d steps\n", len(cat.Modes), steps)
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
