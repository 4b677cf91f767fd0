// internal/game/engine.go
//
// Ordering-puzzle engine.
// Responsibilities:
//   - Create sessions for a mode and load scenario instances (shuffled pool).
//   - Validate and apply placements/removals, click-to-select and drag-and-drop.
//   - Score through the mode's policy and detect scenario/game completion.
//   - Record finished games on the leaderboard.
//
// Notes:
//   - Every operation takes the *Session explicitly; the engine keeps no
//     per-player state, only the catalog, a random source and a clock.
//   - Rejected actions return a sentinel error and change nothing.
//   - Callers serialise actions on one session (see internal/store).

package game

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/robalobadob/logistics-puzzle/internal/leaderboard"
)

const maxNameLen = 40

// Recorder receives leaderboard entries for finished games.
type Recorder interface {
	Record(ctx context.Context, e leaderboard.Entry) (leaderboard.Entry, error)
}

// Engine applies player actions to sessions.
type Engine struct {
	catalog *Catalog
	board   Recorder

	mu  sync.Mutex // guards rng
	rng *rand.Rand
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource injects the random source used for shuffles and hints.
func WithSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = rand.New(src) }
}

// WithClock overrides time.Now (timestamps on sessions and entries).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine over cat. board may be nil, in which case
// finished games are not recorded.
func NewEngine(cat *Catalog, board Recorder, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		board:   board,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Catalog exposes the scenario tables.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// PlacementResult reports the outcome of a place/drop action.
type PlacementResult struct {
	Accepted         bool               `json:"accepted"`
	Slot             int                `json:"slot"`
	Step             StepKey            `json:"step"`
	IsCorrect        bool               `json:"isCorrect"`
	Delta            int                `json:"delta"`
	Score            int                `json:"score"`
	ScenarioComplete bool               `json:"scenarioComplete"`
	GameComplete     bool               `json:"gameComplete"`
	Recorded         *leaderboard.Entry `json:"recorded,omitempty"`
	Reason           string             `json:"reason,omitempty"`
}

// RemoveResult reports the outcome of a remove action.
type RemoveResult struct {
	Removed bool     `json:"removed"`
	Slot    int      `json:"slot"`
	Step    *StepKey `json:"step,omitempty"`
	Delta   int      `json:"delta"`
	Score   int      `json:"score"`
	Reason  string   `json:"reason,omitempty"`
}

// AckResult reports the outcome of acknowledging a scenario.
type AckResult struct {
	Scenario     string             `json:"scenarioId"`
	Delta        int                `json:"delta"`
	Score        int                `json:"score"`
	GameComplete bool               `json:"gameComplete"`
	Recorded     *leaderboard.Entry `json:"recorded,omitempty"`
}

// NewSession starts a game for player in the given mode. The first
// scenario of the mode is loaded and made current.
func (e *Engine) NewSession(player, modeID string) (*Session, error) {
	name := normalizeName(player)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return nil, ErrPlayerName
	}
	mode, ok := e.catalog.Mode(modeID)
	if !ok || len(mode.Scenarios) == 0 {
		return nil, ErrUnknownMode
	}
	s := &Session{
		ID:           uuid.NewString(),
		Player:       name,
		Mode:         mode,
		StartedAt:    e.now().UTC(),
		Credits:      make(map[StepKey]int),
		Acknowledged: make(map[string]bool),
		Instances:    make(map[string]*Instance),
	}
	if _, err := e.SelectScenario(s, mode.Scenarios[0].ID); err != nil {
		return nil, err
	}
	return s, nil
}

// normalizeName trims, collapses inner whitespace and NFC-normalises.
func normalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// LoadScenario returns the session's instance for id, creating it with
// empty slots and a freshly shuffled pool the first time.
func (e *Engine) LoadScenario(s *Session, id string) (*Instance, error) {
	if in, ok := s.Instances[id]; ok {
		return in, nil
	}
	sc, ok := s.Mode.Scenario(id)
	if !ok {
		return nil, ErrUnknownScenario
	}
	in := &Instance{
		Scenario: sc,
		Slots:    make([]*Step, sc.Len()),
		Order:    append([]*Step(nil), sc.Steps...),
	}
	e.shuffle(in.Order)
	s.Instances[id] = in
	return in, nil
}

// SelectScenario makes id the active scenario and drops any selection.
func (e *Engine) SelectScenario(s *Session, id string) (*Instance, error) {
	in, err := e.LoadScenario(s, id)
	if err != nil {
		return nil, err
	}
	s.Current = id
	s.Selected = nil
	return in, nil
}

// Shuffle re-permutes the current pool. Placements stay where they are.
// The new order may equal the old one.
func (e *Engine) Shuffle(s *Session) error {
	in := s.CurrentInstance()
	if in.Frozen {
		return ErrFrozen
	}
	e.shuffle(in.Order)
	return nil
}

// Restart empties every slot of the current scenario, reversing any
// credit, and reshuffles the pool.
func (e *Engine) Restart(s *Session) error {
	in := s.CurrentInstance()
	if in.Frozen {
		return ErrFrozen
	}
	sc := scorerFor(s.Mode.Policy)
	for i, st := range in.Slots {
		if st == nil {
			continue
		}
		in.Slots[i] = nil
		sc.removed(s, in, st)
	}
	s.Selected = nil
	e.shuffle(in.Order)
	return nil
}

func (e *Engine) shuffle(steps []*Step) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(len(steps), func(i, j int) { steps[i], steps[j] = steps[j], steps[i] })
}

// SelectPiece remembers a pool step for a following PlaceAt.
func (e *Engine) SelectPiece(s *Session, key StepKey) error {
	in := s.CurrentInstance()
	if in.Frozen {
		return ErrFrozen
	}
	if key.Scenario != in.Scenario.ID {
		return ErrScenarioMismatch
	}
	if _, ok := in.Scenario.Step(key.Step); !ok {
		return ErrUnknownStep
	}
	if in.slotOf(key) >= 0 {
		return ErrStepPlaced
	}
	s.Selected = &key
	return nil
}

// PlaceAt puts the selected piece into slot (click-to-select flow).
// An occupied slot is rejected with ErrSlotOccupied.
func (e *Engine) PlaceAt(ctx context.Context, s *Session, slot int) (PlacementResult, error) {
	if s.Selected == nil {
		return PlacementResult{}, ErrNoSelection
	}
	res, err := e.place(ctx, s, slot, *s.Selected, false)
	if err != nil {
		return res, err
	}
	s.Selected = nil
	return res, nil
}

// DropPiece places key into slot (drag-and-drop flow). Dropping onto a
// filled slot is refused without an error: Accepted is false.
func (e *Engine) DropPiece(ctx context.Context, s *Session, key StepKey, slot int) (PlacementResult, error) {
	res, err := e.place(ctx, s, slot, key, true)
	if err == nil && res.Accepted && s.Selected != nil && *s.Selected == key {
		s.Selected = nil
	}
	return res, err
}

// Place puts step key into slot of the current scenario.
//
// Validation (nothing changes on failure):
//   - Instance must not be frozen.
//   - slot in [0, len).
//   - key belongs to the current scenario and is not placed already.
//   - Target slot is empty.
//
// On success the policy scores the move; a newly finished game is
// recorded on the leaderboard.
func (e *Engine) Place(ctx context.Context, s *Session, slot int, key StepKey) (PlacementResult, error) {
	return e.place(ctx, s, slot, key, false)
}

func (e *Engine) place(ctx context.Context, s *Session, slot int, key StepKey, drop bool) (PlacementResult, error) {
	in := s.CurrentInstance()
	if in.Frozen {
		return PlacementResult{}, ErrFrozen
	}
	if slot < 0 || slot >= len(in.Slots) {
		return PlacementResult{}, ErrInvalidSlot
	}
	if key.Scenario != in.Scenario.ID {
		return PlacementResult{}, ErrScenarioMismatch
	}
	st, ok := in.Scenario.Step(key.Step)
	if !ok {
		return PlacementResult{}, ErrUnknownStep
	}
	if in.slotOf(key) >= 0 {
		return PlacementResult{}, ErrStepPlaced
	}
	if in.Slots[slot] != nil {
		if drop {
			return PlacementResult{Slot: slot, Step: key, Score: s.Score, Reason: "slot is already filled"}, nil
		}
		return PlacementResult{}, ErrSlotOccupied
	}

	before := s.Score
	in.Slots[slot] = st
	correct := st.CorrectIndex == slot
	scorerFor(s.Mode.Policy).placed(s, in, st, correct)

	res := PlacementResult{
		Accepted:         true,
		Slot:             slot,
		Step:             key,
		IsCorrect:        correct,
		Delta:            s.Score - before,
		Score:            s.Score,
		ScenarioComplete: IsScenarioComplete(in),
		GameComplete:     IsGameComplete(s),
	}
	if res.GameComplete && !s.Recorded && s.Mode.Policy != PolicyAllOrNothing {
		if entry, ok := e.record(ctx, s, ""); ok {
			s.Recorded = true
			res.Recorded = entry
		}
	}
	return res, nil
}

// Remove takes the step out of slot and returns it to the pool,
// reversing its credit. An empty slot is a no-op.
func (e *Engine) Remove(s *Session, slot int) (RemoveResult, error) {
	in := s.CurrentInstance()
	if in.Frozen {
		return RemoveResult{}, ErrFrozen
	}
	if slot < 0 || slot >= len(in.Slots) {
		return RemoveResult{}, ErrInvalidSlot
	}
	st := in.Slots[slot]
	if st == nil {
		return RemoveResult{Slot: slot, Score: s.Score, Reason: "slot is empty"}, nil
	}

	before := s.Score
	in.Slots[slot] = nil
	scorerFor(s.Mode.Policy).removed(s, in, st)
	key := st.Key
	return RemoveResult{
		Removed: true,
		Slot:    slot,
		Step:    &key,
		Delta:   s.Score - before,
		Score:   s.Score,
	}, nil
}

// Acknowledge confirms the current scenario under the all-or-nothing
// policy: it awards the scenario reward, freezes the instance for good
// and records a leaderboard entry.
func (e *Engine) Acknowledge(ctx context.Context, s *Session) (AckResult, error) {
	if s.Mode.Policy != PolicyAllOrNothing {
		return AckResult{}, ErrPolicy
	}
	in := s.CurrentInstance()
	if s.Acknowledged[s.Current] || in.Frozen {
		return AckResult{}, ErrAcknowledged
	}
	if !IsScenarioComplete(in) {
		return AckResult{}, ErrIncomplete
	}

	before := s.Score
	s.Score = min(s.Score+s.Mode.ScenarioReward, s.Mode.MaxScore)
	s.Acknowledged[s.Current] = true
	in.Frozen = true
	s.Selected = nil

	res := AckResult{
		Scenario:     s.Current,
		Delta:        s.Score - before,
		Score:        s.Score,
		GameComplete: IsGameComplete(s),
	}
	if entry, ok := e.record(ctx, s, s.Current); ok {
		res.Recorded = entry
	}
	return res, nil
}

// IsGameComplete applies the mode's completion rule: every step credited
// (additive), every scenario correctly filled (ratio) or every scenario
// acknowledged (all-or-nothing).
func IsGameComplete(s *Session) bool {
	return scorerFor(s.Mode.Policy).complete(s)
}

// CompletedSubtasks counts the steps the session has credit for.
func CompletedSubtasks(s *Session) int {
	if s.Mode.Policy != PolicyAllOrNothing {
		return len(s.Credits)
	}
	n := 0
	for id := range s.Acknowledged {
		if sc, ok := s.Mode.Scenario(id); ok {
			n += sc.Len()
		}
	}
	return n
}

// record writes a leaderboard entry. Failures are logged and swallowed:
// the move itself already succeeded.
func (e *Engine) record(ctx context.Context, s *Session, scenario string) (*leaderboard.Entry, bool) {
	if e.board == nil {
		return nil, false
	}
	entry, err := e.board.Record(ctx, leaderboard.Entry{
		Name:              s.Player,
		Score:             s.Score,
		Mode:              s.Mode.ID,
		Scenario:          scenario,
		SubtasksCompleted: CompletedSubtasks(s),
		CompletedAt:       e.now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("record leaderboard entry")
		return nil, false
	}
	log.Info().Str("player", s.Player).Int("score", s.Score).Str("mode", s.Mode.ID).Msg("score recorded")
	return &entry, true
}
