// internal/catalog/catalog.go
//
// Loads the scenario catalog the engine plays from.
//
// Initialization behavior (Load):
//   1. If a path is given (CATALOG_FILE), read and parse that YAML file.
//   2. Otherwise parse the catalog embedded in assets/catalog.yaml.
//
// Constraints enforced on every catalog:
//   • Mode ids are unique; each mode names a known scoring policy.
//   • Scenario ids are unique within a mode; every scenario has ≥ 2 steps.
//   • Step ids are unique within a scenario and text is non-empty.
//   • A step's correct index is its position in the list, so indexes
//     always cover 0..len-1 exactly once.

package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/logistics-puzzle/assets"
	"github.com/robalobadob/logistics-puzzle/internal/game"
)

// File is the on-disk YAML shape.
type File struct {
	Modes []ModeFile `yaml:"modes"`
}

// ModeFile describes one game mode.
type ModeFile struct {
	ID             string         `yaml:"id"`
	Title          string         `yaml:"title"`
	Description    string         `yaml:"description"`
	Policy         string         `yaml:"policy"`
	StepReward     int            `yaml:"step_reward"`
	ScenarioReward int            `yaml:"scenario_reward"`
	MaxScore       int            `yaml:"max_score"`
	Scenarios      []ScenarioFile `yaml:"scenarios"`
}

// ScenarioFile describes one scenario; steps are in canonical order.
type ScenarioFile struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Icon        string     `yaml:"icon"`
	Color       string     `yaml:"color"`
	Description string     `yaml:"description"`
	Steps       []StepFile `yaml:"steps"`
	Hints       []string   `yaml:"hints"`
}

// StepFile is one step. Icon and color default to the scenario's.
type StepFile struct {
	ID    string `yaml:"id"`
	Text  string `yaml:"text"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

const (
	defaultMaxScore       = 100
	defaultScenarioReward = 100
)

var (
	defaultOnce sync.Once
	defaultCat  *game.Catalog
	defaultErr  error
)

// Default parses the embedded catalog once.
func Default() (*game.Catalog, error) {
	defaultOnce.Do(func() {
		data, err := assets.CatalogYAML()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Parse(data)
	})
	return defaultCat, defaultErr
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*game.Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*game.Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return Build(f)
}

// Build validates f and converts it into engine types.
func Build(f File) (*game.Catalog, error) {
	if len(f.Modes) == 0 {
		return nil, errors.New("catalog has no modes")
	}
	cat := &game.Catalog{}
	seenModes := map[string]bool{}
	for _, mf := range f.Modes {
		if mf.ID == "" {
			return nil, errors.New("mode without id")
		}
		if seenModes[mf.ID] {
			return nil, fmt.Errorf("duplicate mode %q", mf.ID)
		}
		seenModes[mf.ID] = true

		m, err := buildMode(mf)
		if err != nil {
			return nil, fmt.Errorf("mode %q: %w", mf.ID, err)
		}
		cat.Modes = append(cat.Modes, m)
	}
	return cat, nil
}

func buildMode(mf ModeFile) (*game.Mode, error) {
	m := &game.Mode{
		ID:             mf.ID,
		Title:          mf.Title,
		Description:    mf.Description,
		Policy:         game.Policy(mf.Policy),
		StepReward:     mf.StepReward,
		ScenarioReward: mf.ScenarioReward,
		MaxScore:       mf.MaxScore,
	}
	if !m.Policy.Valid() {
		return nil, fmt.Errorf("unknown policy %q", mf.Policy)
	}
	if m.MaxScore <= 0 {
		m.MaxScore = defaultMaxScore
	}
	if m.Policy == game.PolicyAllOrNothing && m.ScenarioReward <= 0 {
		m.ScenarioReward = defaultScenarioReward
	}
	if m.StepReward < 0 {
		return nil, errors.New("step_reward must not be negative")
	}
	if len(mf.Scenarios) == 0 {
		return nil, errors.New("no scenarios")
	}

	seen := map[string]bool{}
	for _, sf := range mf.Scenarios {
		if sf.ID == "" {
			return nil, errors.New("scenario without id")
		}
		if seen[sf.ID] {
			return nil, fmt.Errorf("duplicate scenario %q", sf.ID)
		}
		seen[sf.ID] = true

		sc, err := buildScenario(sf)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sf.ID, err)
		}
		m.Scenarios = append(m.Scenarios, sc)
	}
	return m, nil
}

func buildScenario(sf ScenarioFile) (*game.Scenario, error) {
	if len(sf.Steps) < 2 {
		return nil, fmt.Errorf("needs at least 2 steps, has %d", len(sf.Steps))
	}
	sc := &game.Scenario{
		ID:          sf.ID,
		Title:       sf.Title,
		Icon:        sf.Icon,
		Color:       sf.Color,
		Description: sf.Description,
	}
	seen := map[string]bool{}
	for i, stf := range sf.Steps {
		id := strings.TrimSpace(stf.ID)
		if id == "" {
			return nil, fmt.Errorf("step %d without id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate step %q", id)
		}
		seen[id] = true
		if strings.TrimSpace(stf.Text) == "" {
			return nil, fmt.Errorf("step %q has no text", id)
		}
		sc.Steps = append(sc.Steps, &game.Step{
			Key:          game.StepKey{Scenario: sf.ID, Step: id},
			CorrectIndex: i,
			Text:         stf.Text,
			Icon:         firstNonEmpty(stf.Icon, sf.Icon),
			Color:        firstNonEmpty(stf.Color, sf.Color),
		})
	}
	for _, h := range sf.Hints {
		if h = strings.TrimSpace(h); h != "" {
			sc.Hints = append(sc.Hints, h)
		}
	}
	return sc, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Summary is a compact listing of one mode, used by GET /modes and the CLI.
type Summary struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Policy      game.Policy       `json:"policy"`
	MaxScore    int               `json:"maxScore"`
	TotalSteps  int               `json:"totalSteps"`
	Scenarios   []ScenarioSummary `json:"scenarios"`
}

// ScenarioSummary lists a scenario without revealing its order.
type ScenarioSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Steps int    `json:"steps"`
}

// Summarize lists every mode of cat.
func Summarize(cat *game.Catalog) []Summary {
	out := make([]Summary, 0, len(cat.Modes))
	for _, m := range cat.Modes {
		s := Summary{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Policy:      m.Policy,
			MaxScore:    m.MaxScore,
			TotalSteps:  m.TotalSteps(),
			Scenarios:   []ScenarioSummary{},
		}
		for _, sc := range m.Scenarios {
			s.Scenarios = append(s.Scenarios, ScenarioSummary{ID: sc.ID, Title: sc.Title, Steps: sc.Len()})
		}
		out = append(out, s)
	}
	return out
}
