package main

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/logistics-puzzle/internal/database"
	"github.com/robalobadob/logistics-puzzle/internal/game"
	"github.com/robalobadob/logistics-puzzle/internal/httpserver"
	"github.com/robalobadob/logistics-puzzle/internal/leaderboard"
	"github.com/robalobadob/logistics-puzzle/internal/store"
)

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the puzzle API on PORT (default 5175).

The leaderboard backend is chosen by LEADERBOARD_BACKEND: "memory" (default)
or "sqlite", which runs against LEADERBOARD_DSN or an in-memory database.
Either way nothing survives a restart unless the DSN points at a file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagPort, "port", "", "Listen port (overrides PORT)")
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagPort != "" {
		cfg.Port = flagPort
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	board, err := openBoard()
	if err != nil {
		return err
	}

	var opts []game.Option
	if cfg.ShuffleSeed != 0 {
		opts = append(opts, game.WithSource(rand.NewSource(cfg.ShuffleSeed)))
	}
	eng := game.NewEngine(cat, board, opts...)
	srv := httpserver.New(eng, store.NewMemoryStore(store.WithTTL(cfg.SessionTTL)), board, cfg)

	log.Info().
		Str("port", cfg.Port).
		Str("leaderboard", cfg.Leaderboard).
		Int("modes", len(cat.Modes)).
		Msg("starting puzzle server")
	return srv.Start(":" + cfg.Port)
}

// openBoard builds the configured leaderboard backend.
func openBoard() (leaderboard.Board, error) {
	switch cfg.Leaderboard {
	case "", "memory":
		return leaderboard.NewMemory(), nil
	case "sqlite":
		db, err := database.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return leaderboard.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown leaderboard backend %q", cfg.Leaderboard)
	}
}
