// internal/game/policy.go
//
// Scoring policies. A mode names one; the engine resolves it with
// scorerFor and calls it after every accepted place/remove.
//
//   additive      per-step reward, idempotent per StepKey, reversed on removal
//   ratio         score rebuilt from current correct placements every move
//   allOrNothing  placements never score; acknowledgment does

package game

import "math"

// scorer applies a policy to a session. Implementations mutate only
// Score and Credits.
type scorer interface {
	placed(s *Session, in *Instance, st *Step, correct bool)
	removed(s *Session, in *Instance, st *Step)
	complete(s *Session) bool
}

func scorerFor(p Policy) scorer {
	switch p {
	case PolicyRatio:
		return ratio{}
	case PolicyAllOrNothing:
		return allOrNothing{}
	default:
		return additive{}
	}
}

type additive struct{}

func (additive) placed(s *Session, in *Instance, st *Step, correct bool) {
	if !correct {
		return
	}
	if _, done := s.Credits[st.Key]; done {
		return
	}
	pts := s.Mode.stepReward(in.Scenario)
	if room := s.Mode.MaxScore - s.Score; pts > room {
		pts = max(room, 0)
	}
	s.Credits[st.Key] = pts
	s.Score += pts
}

// removed clears the marker too, so placing the step correctly again
// earns the reward again.
func (additive) removed(s *Session, _ *Instance, st *Step) {
	pts, ok := s.Credits[st.Key]
	if !ok {
		return
	}
	delete(s.Credits, st.Key)
	s.Score -= pts
}

func (additive) complete(s *Session) bool {
	return len(s.Credits) == s.Mode.TotalSteps()
}

type ratio struct{}

func (r ratio) placed(s *Session, _ *Instance, _ *Step, _ bool) { r.recompute(s) }

func (r ratio) removed(s *Session, _ *Instance, _ *Step) { r.recompute(s) }

// recompute derives Credits and Score from what is on the board right now.
func (ratio) recompute(s *Session) {
	clear(s.Credits)
	for _, in := range s.Instances {
		for i, st := range in.Slots {
			if st != nil && st.CorrectIndex == i {
				s.Credits[st.Key] = 0
			}
		}
	}
	total := s.Mode.TotalSteps()
	if total == 0 {
		s.Score = 0
		return
	}
	score := int(math.Round(100 * float64(len(s.Credits)) / float64(total)))
	s.Score = min(score, s.Mode.MaxScore)
}

func (ratio) complete(s *Session) bool {
	for _, sc := range s.Mode.Scenarios {
		in, ok := s.Instances[sc.ID]
		if !ok || !IsScenarioComplete(in) {
			return false
		}
	}
	return len(s.Mode.Scenarios) > 0
}

type allOrNothing struct{}

func (allOrNothing) placed(*Session, *Instance, *Step, bool) {}

func (allOrNothing) removed(*Session, *Instance, *Step) {}

func (allOrNothing) complete(s *Session) bool {
	return len(s.Mode.Scenarios) > 0 && len(s.Acknowledged) == len(s.Mode.Scenarios)
}
