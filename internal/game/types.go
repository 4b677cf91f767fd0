// internal/game/types.go
//
// Core type definitions for the ordering-puzzle engine.
// Defines:
//   - Catalog/Mode/Scenario/Step: immutable tables loaded at startup.
//   - StepKey: composite (scenario, step) identifier.
//   - Instance: one scenario's slots and shuffled pool.
//   - Session: a single player's game across every scenario of a mode.

package game

import (
	"math"
	"time"
)

// Policy names the scoring rule a mode plays under.
type Policy string

const (
	// PolicyAdditive awards a fixed reward per newly correct step and
	// reverses it when that step is removed.
	PolicyAdditive Policy = "per-step-idempotent-additive"
	// PolicyRatio recomputes the score from the current correct placements.
	PolicyRatio Policy = "per-step-recomputed-ratio"
	// PolicyAllOrNothing scores a scenario only when the player acknowledges it.
	PolicyAllOrNothing Policy = "all-or-nothing"
)

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyAdditive, PolicyRatio, PolicyAllOrNothing:
		return true
	}
	return false
}

// StepKey identifies a step across the whole catalog.
type StepKey struct {
	Scenario string `json:"scenarioId"`
	Step     string `json:"stepId"`
}

func (k StepKey) String() string { return k.Scenario + "/" + k.Step }

// Step is one unit of a scenario, tagged with its canonical position.
type Step struct {
	Key          StepKey
	CorrectIndex int
	Text         string
	Icon         string
	Color        string
}

// Scenario is a named process with a fixed canonical step order.
// Steps[i].CorrectIndex == i always holds.
type Scenario struct {
	ID          string
	Title       string
	Icon        string
	Color       string
	Description string
	Steps       []*Step
	Hints       []string
}

// Len is the number of steps (and slots).
func (s *Scenario) Len() int { return len(s.Steps) }

// Step looks up a step by its id within the scenario.
func (s *Scenario) Step(id string) (*Step, bool) {
	for _, st := range s.Steps {
		if st.Key.Step == id {
			return st, true
		}
	}
	return nil, false
}

// Mode is one variant of the game: a set of scenarios plus a scoring rule.
type Mode struct {
	ID             string
	Title          string
	Description    string
	Policy         Policy
	StepReward     int // additive: points per correct step (0 = round(100/len))
	ScenarioReward int // all-or-nothing: points per acknowledged scenario
	MaxScore       int
	Scenarios      []*Scenario
}

// Scenario looks up a scenario of the mode by id.
func (m *Mode) Scenario(id string) (*Scenario, bool) {
	for _, sc := range m.Scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return nil, false
}

// TotalSteps sums the step counts of every scenario in the mode.
func (m *Mode) TotalSteps() int {
	n := 0
	for _, sc := range m.Scenarios {
		n += sc.Len()
	}
	return n
}

// stepReward is the additive reward for one correct step of sc.
func (m *Mode) stepReward(sc *Scenario) int {
	if m.StepReward > 0 {
		return m.StepReward
	}
	if sc.Len() == 0 {
		return 0
	}
	return int(math.Round(100 / float64(sc.Len())))
}

// Catalog is the full set of modes available to players.
type Catalog struct {
	Modes []*Mode
}

// Mode looks up a mode by id.
func (c *Catalog) Mode(id string) (*Mode, bool) {
	for _, m := range c.Modes {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// InstanceState is the coarse lifecycle of a puzzle instance.
type InstanceState string

const (
	StateEmpty    InstanceState = "empty"
	StatePartial  InstanceState = "partially_filled"
	StateComplete InstanceState = "complete"
	StateFrozen   InstanceState = "frozen"
)

// Instance holds a scenario's slot assignment and presentation order.
// Order is a permutation of every step; the pool is Order minus the
// placed steps, so a removed step returns to its shuffled position.
type Instance struct {
	Scenario *Scenario
	Slots    []*Step // nil = empty slot
	Order    []*Step
	Frozen   bool // set once by acknowledgment, never cleared
}

// Pool returns the unplaced steps in presentation order.
func (in *Instance) Pool() []*Step {
	out := make([]*Step, 0, len(in.Order))
	for _, st := range in.Order {
		if in.slotOf(st.Key) < 0 {
			out = append(out, st)
		}
	}
	return out
}

// slotOf returns the slot holding key, or -1.
func (in *Instance) slotOf(key StepKey) int {
	for i, st := range in.Slots {
		if st != nil && st.Key == key {
			return i
		}
	}
	return -1
}

// Filled counts occupied slots.
func (in *Instance) Filled() int {
	n := 0
	for _, st := range in.Slots {
		if st != nil {
			n++
		}
	}
	return n
}

// CorrectCount counts slots whose occupant belongs there.
func (in *Instance) CorrectCount() int {
	n := 0
	for i, st := range in.Slots {
		if st != nil && st.CorrectIndex == i {
			n++
		}
	}
	return n
}

// State reports where the instance sits in its lifecycle.
func (in *Instance) State() InstanceState {
	switch {
	case in.Frozen:
		return StateFrozen
	case IsScenarioComplete(in):
		return StateComplete
	case in.Filled() == 0:
		return StateEmpty
	default:
		return StatePartial
	}
}

// IsScenarioComplete is true iff every slot is filled and each occupant's
// CorrectIndex equals its slot.
func IsScenarioComplete(in *Instance) bool {
	if len(in.Slots) == 0 {
		return false
	}
	for i, st := range in.Slots {
		if st == nil || st.CorrectIndex != i {
			return false
		}
	}
	return true
}

// Session holds one player's state for a game. It is created by
// Engine.NewSession and discarded on "new game".
type Session struct {
	ID        string
	Player    string
	Mode      *Mode
	Score     int
	StartedAt time.Time

	// Credits is the completed-marker set. For the additive policy the
	// value is the points actually awarded, so removal subtracts exactly
	// that much.
	Credits map[StepKey]int

	// Acknowledged scenarios (all-or-nothing policy only).
	Acknowledged map[string]bool

	Instances map[string]*Instance
	Current   string   // active scenario id
	Selected  *StepKey // click-to-select piece, if any
	Recorded  bool     // leaderboard entry written for a completed game
}

// CurrentInstance returns the instance of the active scenario.
func (s *Session) CurrentInstance() *Instance {
	return s.Instances[s.Current]
}
