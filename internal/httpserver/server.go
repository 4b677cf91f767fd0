// internal/httpserver/server.go
//
// HTTP server wiring for the ordering-puzzle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access log).
//   - Public endpoints: "/", "/health", "/modes".
//   - Game endpoints under /game (signed session cookie), see routes_game.go.
//   - Leaderboard and sharing endpoints, see routes_leaderboard.go and
//     routes_share.go.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Rejected player actions answer 422 with the unchanged state attached.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/logistics-puzzle/internal/catalog"
	"github.com/robalobadob/logistics-puzzle/internal/config"
	"github.com/robalobadob/logistics-puzzle/internal/game"
	"github.com/robalobadob/logistics-puzzle/internal/leaderboard"
	"github.com/robalobadob/logistics-puzzle/internal/share"
	"github.com/robalobadob/logistics-puzzle/internal/store"
)

// Server bundles the router with the engine, session store and leaderboard.
type Server struct {
	r     *chi.Mux
	eng   *game.Engine
	store store.Store
	board leaderboard.Board
	cfg   config.Config
	link  share.Link
}

// New constructs a Server, installs middleware, and registers routes.
func New(eng *game.Engine, st store.Store, board leaderboard.Board, cfg config.Config) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		eng:   eng,
		store: st,
		board: board,
		cfg:   cfg,
		link:  share.Link{URL: cfg.AppURL},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "logistics-puzzle",
			"endpoints": []string{"/health", "/modes", "POST /game/new", "/game/*", "/leaderboard", "/share"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
	})
	s.r.Get("/modes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Summarize(s.eng.Catalog()))
	})

	s.mountGame(s.r)
	s.mountLeaderboard(s.r)
	s.mountShare(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("reqId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("http")
})

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// errorRes is the body of every non-2xx answer.
type errorRes struct {
	Error  string         `json:"error"`
	Reason string         `json:"reason,omitempty"`
	State  *game.Snapshot `json:"state,omitempty"`
}

// advisories maps rejected-action sentinels to stable client codes.
var advisories = []struct {
	err  error
	code string
}{
	{game.ErrUnknownMode, "unknown_mode"},
	{game.ErrUnknownScenario, "unknown_scenario"},
	{game.ErrUnknownStep, "unknown_step"},
	{game.ErrPlayerName, "invalid_name"},
	{game.ErrInvalidSlot, "invalid_slot"},
	{game.ErrSlotOccupied, "slot_occupied"},
	{game.ErrScenarioMismatch, "scenario_mismatch"},
	{game.ErrStepPlaced, "step_placed"},
	{game.ErrNoSelection, "no_selection"},
	{game.ErrFrozen, "frozen"},
	{game.ErrPolicy, "policy"},
	{game.ErrIncomplete, "incomplete"},
	{game.ErrAcknowledged, "acknowledged"},
}

// advisoryCode returns the client code for a rejected action, or false for
// anything that is not the player's doing.
func advisoryCode(err error) (string, bool) {
	for _, a := range advisories {
		if errors.Is(err, a.err) {
			return a.code, true
		}
	}
	return "", false
}

// writeError answers err: 401 for a vanished session, 422 for rejected
// actions, 500 for the rest.
func writeError(w http.ResponseWriter, r *http.Request, err error, state *game.Snapshot) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusUnauthorized, errorRes{Error: "no_session", Reason: "start a new game first"})
		return
	}
	if code, ok := advisoryCode(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorRes{Error: code, Reason: err.Error(), State: state})
		return
	}
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal"})
}
