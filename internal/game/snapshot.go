// internal/game/snapshot.go
//
// Read-only view of a session for the rendering client. Building a
// snapshot never mutates the session and never reshuffles.

package game

import "time"

// Snapshot is everything a client needs to draw the game.
type Snapshot struct {
	SessionID         string             `json:"sessionId"`
	Player            string             `json:"player"`
	Mode              string             `json:"mode"`
	Policy            Policy             `json:"policy"`
	Score             int                `json:"score"`
	MaxScore          int                `json:"maxScore"`
	CompletedSubtasks int                `json:"completedSubtasks"`
	TotalSubtasks     int                `json:"totalSubtasks"`
	CurrentScenario   string             `json:"currentScenario"`
	State             InstanceState      `json:"state"`
	Slots             []SlotView         `json:"slots"`
	Pool              []StepView         `json:"pool"`
	Selected          *StepKey           `json:"selected,omitempty"`
	Scenarios         []ScenarioProgress `json:"scenarios"`
	GameComplete      bool               `json:"gameComplete"`
	StartedAt         time.Time          `json:"startedAt"`
}

// StepView is a step as shown to the player.
type StepView struct {
	StepKey
	Text  string `json:"text"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// SlotView is one slot; Correct is meaningful only when Step is set.
type SlotView struct {
	Index   int       `json:"index"`
	Step    *StepView `json:"step,omitempty"`
	Correct bool      `json:"correct"`
}

// Scenario progress statuses.
const (
	StatusStart      = "start"
	StatusInProgress = "in_progress"
	StatusReady      = "ready" // complete, waiting for acknowledgment
	StatusComplete   = "complete"
)

// ScenarioProgress summarises one scenario for the selector/sidebar.
type ScenarioProgress struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
	Description  string `json:"description,omitempty"`
	Correct      int    `json:"correct"`
	Total        int    `json:"total"`
	Status       string `json:"status"`
	Acknowledged bool   `json:"acknowledged,omitempty"`
}

func viewOf(st *Step) StepView {
	return StepView{StepKey: st.Key, Text: st.Text, Icon: st.Icon, Color: st.Color}
}

// TakeSnapshot renders the session.
func TakeSnapshot(s *Session) Snapshot {
	in := s.CurrentInstance()
	snap := Snapshot{
		SessionID:         s.ID,
		Player:            s.Player,
		Mode:              s.Mode.ID,
		Policy:            s.Mode.Policy,
		Score:             s.Score,
		MaxScore:          s.Mode.MaxScore,
		CompletedSubtasks: CompletedSubtasks(s),
		TotalSubtasks:     s.Mode.TotalSteps(),
		CurrentScenario:   s.Current,
		State:             in.State(),
		Slots:             make([]SlotView, len(in.Slots)),
		Pool:              []StepView{},
		GameComplete:      IsGameComplete(s),
		StartedAt:         s.StartedAt,
	}
	if s.Selected != nil {
		sel := *s.Selected
		snap.Selected = &sel
	}
	for i, st := range in.Slots {
		snap.Slots[i] = SlotView{Index: i}
		if st != nil {
			v := viewOf(st)
			snap.Slots[i].Step = &v
			snap.Slots[i].Correct = st.CorrectIndex == i
		}
	}
	for _, st := range in.Pool() {
		snap.Pool = append(snap.Pool, viewOf(st))
	}
	for _, sc := range s.Mode.Scenarios {
		snap.Scenarios = append(snap.Scenarios, progressOf(s, sc))
	}
	return snap
}

func progressOf(s *Session, sc *Scenario) ScenarioProgress {
	p := ScenarioProgress{
		ID:           sc.ID,
		Title:        sc.Title,
		Icon:         sc.Icon,
		Color:        sc.Color,
		Description:  sc.Description,
		Total:        sc.Len(),
		Status:       StatusStart,
		Acknowledged: s.Acknowledged[sc.ID],
	}
	in, ok := s.Instances[sc.ID]
	if !ok {
		return p
	}
	p.Correct = in.CorrectCount()
	switch {
	case p.Acknowledged:
		p.Status = StatusComplete
	case IsScenarioComplete(in) && s.Mode.Policy == PolicyAllOrNothing:
		p.Status = StatusReady
	case IsScenarioComplete(in):
		p.Status = StatusComplete
	case p.Correct > 0:
		p.Status = StatusInProgress
	}
	return p
}
