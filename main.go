// puzzle serves the logistics ordering puzzle over HTTP and offers a few
// offline helpers for the scenario catalog.
//
// Usage:
//
//	puzzle serve                      - Start the HTTP API
//	puzzle catalog list               - List modes and scenarios
//	puzzle catalog validate [file]    - Check a catalog file
//	puzzle hint <mode> <scenario>     - Print a random hint
//
// Global flags:
//
//	--catalog <file>  - Scenario catalog (default: embedded, or CATALOG_FILE)
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robalobadob/logistics-puzzle/internal/catalog"
	"github.com/robalobadob/logistics-puzzle/internal/config"
	"github.com/robalobadob/logistics-puzzle/internal/game"
)

var (
	// Global flags
	flagCatalog string

	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "puzzle",
	Short:         "Logistics ordering puzzle service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
		if flagCatalog != "" {
			cfg.CatalogFile = flagCatalog
		}
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to a scenario catalog YAML file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(hintCmd)
}

// loadCatalog reads the configured catalog, falling back to the embedded one.
func loadCatalog() (*game.Catalog, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}
