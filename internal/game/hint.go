package game

// fallbackHint is served for scenarios without hints of their own.
const fallbackHint = "Think about the logical order of operations!"

// Hint picks one of the current scenario's hints uniformly at random.
func (e *Engine) Hint(s *Session) string {
	return e.pickHint(s.CurrentInstance().Scenario)
}

// HintFor picks a hint for a scenario of a mode without a session.
func (e *Engine) HintFor(modeID, scenarioID string) (string, error) {
	m, ok := e.catalog.Mode(modeID)
	if !ok {
		return "", ErrUnknownMode
	}
	sc, ok := m.Scenario(scenarioID)
	if !ok {
		return "", ErrUnknownScenario
	}
	return e.pickHint(sc), nil
}

func (e *Engine) pickHint(sc *Scenario) string {
	if len(sc.Hints) == 0 {
		return fallbackHint
	}
	e.mu.Lock()
	i := e.rng.Intn(len(sc.Hints))
	e.mu.Unlock()
	return sc.Hints[i]
}
