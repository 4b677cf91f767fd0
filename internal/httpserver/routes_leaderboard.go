// internal/httpserver/routes_leaderboard.go
//
// GET /leaderboard?limit=N → top N entries, highest score first.
// A missing, malformed or non-positive limit falls back to LEADERBOARD_TOP.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/logistics-puzzle/internal/leaderboard"
)

// mountLeaderboard registers the leaderboard route.
func (s *Server) mountLeaderboard(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
}

type leaderboardRes struct {
	Limit   int                 `json:"limit"`
	Entries []leaderboard.Entry `json:"entries"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	k := s.cfg.TopN
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		k = v
	}
	top, err := s.board.Top(r.Context(), k)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Limit: k, Entries: top})
}
