// internal/httpserver/routes_game.go
//
// HTTP routes for playing a game. Everything lives under /game:
//   - POST /game/new      → start a session for {name, mode}, set cookie;
//                           empty fields reuse the previous session's
//   - GET  /game/state    → snapshot + leaderboard top-N
//   - POST /game/scenario → switch scenario {scenarioId}
//   - POST /game/select   → select a pool piece {scenarioId, stepId}
//   - POST /game/place    → place the selected piece {slot}
//   - POST /game/drop     → drag-and-drop {scenarioId, stepId, slot}
//   - POST /game/remove   → clear a slot {slot}
//   - POST /game/shuffle  → reshuffle the current pool
//   - POST /game/restart  → empty the current scenario and reshuffle
//   - GET  /game/hint     → random hint for the current scenario
//   - POST /game/ack      → confirm a completed scenario (all-or-nothing)
//
// Every route except /new needs the session cookie. Actions on a session
// run inside store.Update, one at a time.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/logistics-puzzle/internal/game"
	"github.com/robalobadob/logistics-puzzle/internal/leaderboard"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession())
			r.Get("/state", s.handleState)
			r.Post("/scenario", s.handleScenario)
			r.Post("/select", s.handleSelect)
			r.Post("/place", s.handlePlace)
			r.Post("/drop", s.handleDrop)
			r.Post("/remove", s.handleRemove)
			r.Post("/shuffle", s.handleShuffle)
			r.Post("/restart", s.handleRestart)
			r.Get("/hint", s.handleHint)
			r.Post("/ack", s.handleAck)
		})
	})
}

// actionRes is the body of every successful action.
type actionRes struct {
	Result any           `json:"result,omitempty"`
	State  game.Snapshot `json:"state"`
}

// act runs fn against the caller's session and answers with its result
// and the snapshot taken right after it.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sess *game.Session) (any, error)) {
	var (
		out  any
		snap game.Snapshot
	)
	err := s.store.Update(r.Context(), sessionID(r.Context()), func(sess *game.Session) error {
		res, err := fn(r.Context(), sess)
		out = res
		snap = game.TakeSnapshot(sess)
		return err
	})
	if err != nil {
		writeError(w, r, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, actionRes{Result: out, State: snap})
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json", Reason: err.Error()})
		return false
	}
	return true
}

// -----------------------------------------------------------------------------
// /game/new

type newGameReq struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

type newGameRes struct {
	SessionID string        `json:"sessionId"`
	Token     string        `json:"token"`
	State     game.Snapshot `json:"state"`
}

// handleNewGame discards the caller's previous session (if any), starts a
// new one and issues its cookie. An empty name or mode is taken from the
// previous session, so "new game" keeps the player. The leaderboard is
// left alone.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if !decode(w, r, &req) {
		return
	}
	prevID, prev := s.previousGame(r)
	if strings.TrimSpace(req.Name) == "" {
		req.Name = prev.Name
	}
	if req.Mode == "" {
		req.Mode = prev.Mode
	}
	sess, err := s.eng.NewSession(req.Name, req.Mode)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	if prevID != "" {
		_ = s.store.Delete(r.Context(), prevID)
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, r, err, nil)
		return
	}
	tok, exp, err := s.signSession(sess.ID, sess.Player)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	s.setSessionCookie(w, tok, exp)

	hlog.FromRequest(r).Info().
		Str("session", sess.ID).
		Str("mode", sess.Mode.ID).
		Msg("new game")
	writeJSON(w, http.StatusOK, newGameRes{SessionID: sess.ID, Token: tok, State: game.TakeSnapshot(sess)})
}

// previousGame returns the id, player and mode of the session named by the
// caller's token, or zero values when there is none.
func (s *Server) previousGame(r *http.Request) (string, newGameReq) {
	tok := bearerOrCookie(r)
	if tok == "" {
		return "", newGameReq{}
	}
	id, err := s.parseSession(tok)
	if err != nil {
		return "", newGameReq{}
	}
	var prev newGameReq
	err = s.store.Update(r.Context(), id, func(old *game.Session) error {
		prev = newGameReq{Name: old.Player, Mode: old.Mode.ID}
		return nil
	})
	if err != nil {
		return id, newGameReq{}
	}
	return id, prev
}

// -----------------------------------------------------------------------------
// /game/state

type stateRes struct {
	State       game.Snapshot       `json:"state"`
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	err := s.store.Update(r.Context(), sessionID(r.Context()), func(sess *game.Session) error {
		snap = game.TakeSnapshot(sess)
		return nil
	})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	top, err := s.board.Top(r.Context(), s.cfg.TopN)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, stateRes{State: snap, Leaderboard: top})
}

// -----------------------------------------------------------------------------
// scenario and piece selection

type scenarioReq struct {
	Scenario string `json:"scenarioId"`
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioReq
	if !decode(w, r, &req) {
		return
	}
	s.act(w, r, func(_ context.Context, sess *game.Session) (any, error) {
		_, err := s.eng.SelectScenario(sess, req.Scenario)
		return nil, err
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var key game.StepKey
	if !decode(w, r, &key) {
		return
	}
	s.act(w, r, func(_ context.Context, sess *game.Session) (any, error) {
		return nil, s.eng.SelectPiece(sess, key)
	})
}

// -----------------------------------------------------------------------------
// placement

type slotReq struct {
	Slot *int `json:"slot"`
}

type dropReq struct {
	game.StepKey
	Slot *int `json:"slot"`
}

// slotOf rejects bodies without a slot; 0 is a valid index.
func slotOf(w http.ResponseWriter, p *int) (int, bool) {
	if p == nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json", Reason: "slot is required"})
		return 0, false
	}
	return *p, true
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req slotReq
	if !decode(w, r, &req) {
		return
	}
	slot, ok := slotOf(w, req.Slot)
	if !ok {
		return
	}
	s.act(w, r, func(ctx context.Context, sess *game.Session) (any, error) {
		return s.eng.PlaceAt(ctx, sess, slot)
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropReq
	if !decode(w, r, &req) {
		return
	}
	slot, ok := slotOf(w, req.Slot)
	if !ok {
		return
	}
	s.act(w, r, func(ctx context.Context, sess *game.Session) (any, error) {
		return s.eng.DropPiece(ctx, sess, req.StepKey, slot)
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req slotReq
	if !decode(w, r, &req) {
		return
	}
	slot, ok := slotOf(w, req.Slot)
	if !ok {
		return
	}
	s.act(w, r, func(_ context.Context, sess *game.Session) (any, error) {
		return s.eng.Remove(sess, slot)
	})
}

// -----------------------------------------------------------------------------
// shuffle, restart, hint, acknowledgment

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(_ context.Context, sess *game.Session) (any, error) {
		return nil, s.eng.Shuffle(sess)
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(_ context.Context, sess *game.Session) (any, error) {
		return nil, s.eng.Restart(sess)
	})
}

type hintRes struct {
	Scenario string `json:"scenarioId"`
	Hint     string `json:"hint"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(_ context.Context, sess *game.Session) (any, error) {
		return hintRes{Scenario: sess.Current, Hint: s.eng.Hint(sess)}, nil
	})
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, sess *game.Session) (any, error) {
		return s.eng.Acknowledge(ctx, sess)
	})
}
