package game_test

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/logistics-puzzle/internal/catalog"
	"github.com/robalobadob/logistics-puzzle/internal/game"
	"github.com/robalobadob/logistics-puzzle/internal/leaderboard"
)

var ctx = context.Background()

func newEngine(t *testing.T, seed int64) (*game.Engine, leaderboard.Board) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	board := leaderboard.NewMemory()
	clock := func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return game.NewEngine(cat, board, game.WithSource(rand.NewSource(seed)), game.WithClock(clock)), board
}

func newSession(t *testing.T, eng *game.Engine, mode string) *game.Session {
	t.Helper()
	s, err := eng.NewSession("Tester", mode)
	require.NoError(t, err)
	return s
}

func stepAt(s *game.Session, i int) game.StepKey {
	return s.CurrentInstance().Scenario.Steps[i].Key
}

// solveCurrent places every step of the current scenario in its slot.
func solveCurrent(t *testing.T, eng *game.Engine, s *game.Session) game.PlacementResult {
	t.Helper()
	var last game.PlacementResult
	for i, st := range s.CurrentInstance().Scenario.Steps {
		res, err := eng.Place(ctx, s, i, st.Key)
		require.NoError(t, err)
		last = res
	}
	return last
}

func poolKeys(in *game.Instance) []game.StepKey {
	var out []game.StepKey
	for _, st := range in.Pool() {
		out = append(out, st.Key)
	}
	return out
}

func topEntries(t *testing.T, b leaderboard.Board) []leaderboard.Entry {
	t.Helper()
	top, err := b.Top(ctx, 100)
	require.NoError(t, err)
	return top
}

func TestNewSession(t *testing.T) {
	eng, _ := newEngine(t, 1)

	s, err := eng.NewSession("  Ana \t Lopez ", "tasks")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", s.Player)
	assert.Equal(t, "warehouse", s.Current)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, game.StateEmpty, s.CurrentInstance().State())
	assert.Len(t, s.CurrentInstance().Pool(), 5)

	_, err = eng.NewSession("   ", "tasks")
	assert.ErrorIs(t, err, game.ErrPlayerName)

	_, err = eng.NewSession("this name is far too long to fit the scoreboard", "tasks")
	assert.ErrorIs(t, err, game.ErrPlayerName)

	_, err = eng.NewSession("Ana", "speedrun")
	assert.ErrorIs(t, err, game.ErrUnknownMode)
}

func TestPlace_WarehouseExample(t *testing.T) {
	eng, _ := newEngine(t, 1)

	s := newSession(t, eng, "tasks")
	receive := stepAt(s, 0)
	require.Equal(t, "Receive and inspect incoming inventory shipments", s.CurrentInstance().Scenario.Steps[0].Text)

	res, err := eng.Place(ctx, s, 0, receive)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 4, res.Delta)
	assert.Equal(t, 4, s.Score)

	s2 := newSession(t, eng, "tasks")
	res, err = eng.Place(ctx, s2, 3, receive)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0, res.Delta)
	assert.Equal(t, 0, s2.Score)
}

func TestPlace_RejectionsLeaveStateUnchanged(t *testing.T) {
	eng, _ := newEngine(t, 2)
	s := newSession(t, eng, "tasks")
	_, err := eng.Place(ctx, s, 1, stepAt(s, 1))
	require.NoError(t, err)

	foreign := game.StepKey{Scenario: "transportation", Step: "calculate-routes"}
	cases := []struct {
		name string
		slot int
		key  game.StepKey
		want error
	}{
		{"negative slot", -1, stepAt(s, 0), game.ErrInvalidSlot},
		{"slot past end", 5, stepAt(s, 0), game.ErrInvalidSlot},
		{"occupied slot", 1, stepAt(s, 0), game.ErrSlotOccupied},
		{"other scenario", 0, foreign, game.ErrScenarioMismatch},
		{"unknown step", 0, game.StepKey{Scenario: "warehouse", Step: "teleport"}, game.ErrUnknownStep},
		{"already placed", 0, stepAt(s, 1), game.ErrStepPlaced},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := game.TakeSnapshot(s)
			_, err := eng.Place(ctx, s, tc.slot, tc.key)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, game.TakeSnapshot(s))
		})
	}
}

func TestPlaceThenRemove_RestoresState(t *testing.T) {
	eng, _ := newEngine(t, 3)
	s := newSession(t, eng, "tasks")
	in := s.CurrentInstance()

	for slot := 0; slot < 5; slot++ {
		for _, st := range in.Scenario.Steps {
			poolBefore := poolKeys(in)
			scoreBefore := s.Score
			creditsBefore := len(s.Credits)
			snapBefore := game.TakeSnapshot(s)

			_, err := eng.Place(ctx, s, slot, st.Key)
			require.NoError(t, err)
			rm, err := eng.Remove(s, slot)
			require.NoError(t, err)
			require.True(t, rm.Removed)

			assert.Equal(t, poolBefore, poolKeys(in))
			assert.Equal(t, scoreBefore, s.Score)
			assert.Equal(t, creditsBefore, len(s.Credits))
			assert.Equal(t, snapBefore, game.TakeSnapshot(s))
		}
	}
}

func TestRemove_EmptyAndInvalid(t *testing.T) {
	eng, _ := newEngine(t, 4)
	s := newSession(t, eng, "tasks")

	res, err := eng.Remove(s, 2)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, "slot is empty", res.Reason)

	_, err = eng.Remove(s, 7)
	assert.ErrorIs(t, err, game.ErrInvalidSlot)
}

func TestAdditive_ReplacingAfterRemovalRescores(t *testing.T) {
	eng, _ := newEngine(t, 5)
	s := newSession(t, eng, "tasks")
	key := stepAt(s, 2)

	_, err := eng.Place(ctx, s, 2, key)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Score)

	rm, err := eng.Remove(s, 2)
	require.NoError(t, err)
	assert.Equal(t, -4, rm.Delta)
	assert.Equal(t, 0, s.Score)
	assert.NotContains(t, s.Credits, key)

	res, err := eng.Place(ctx, s, 2, key)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Delta)
	assert.Equal(t, 4, s.Score)
}

func TestAdditive_RandomPlayKeepsInvariants(t *testing.T) {
	eng, _ := newEngine(t, 6)
	s := newSession(t, eng, "tasks")
	r := rand.New(rand.NewSource(42))
	scenarios := s.Mode.Scenarios

	for i := 0; i < 2000; i++ {
		sc := scenarios[r.Intn(len(scenarios))]
		_, err := eng.SelectScenario(s, sc.ID)
		require.NoError(t, err)

		slot := r.Intn(sc.Len()+2) - 1
		if r.Intn(3) == 0 {
			_, _ = eng.Remove(s, slot)
		} else {
			st := sc.Steps[r.Intn(sc.Len())]
			_, _ = eng.Place(ctx, s, slot, st.Key)
		}

		require.Equal(t, 4*len(s.Credits), s.Score)
		require.LessOrEqual(t, s.Score, 100)
		require.GreaterOrEqual(t, s.Score, 0)
		for _, in := range s.Instances {
			seen := map[game.StepKey]int{}
			for _, st := range in.Slots {
				if st != nil {
					seen[st.Key]++
				}
			}
			for _, st := range in.Pool() {
				seen[st.Key]++
			}
			require.Len(t, seen, in.Scenario.Len())
			for _, n := range seen {
				require.Equal(t, 1, n)
			}
		}
	}
}

func TestAdditive_FullGameRecordsOnce(t *testing.T) {
	eng, board := newEngine(t, 7)
	s := newSession(t, eng, "tasks")

	var last game.PlacementResult
	for i, sc := range s.Mode.Scenarios {
		_, err := eng.SelectScenario(s, sc.ID)
		require.NoError(t, err)
		last = solveCurrent(t, eng, s)
		assert.True(t, last.ScenarioComplete)
		assert.Equal(t, i == len(s.Mode.Scenarios)-1, last.GameComplete)
	}
	assert.Equal(t, 100, s.Score)
	assert.True(t, game.IsGameComplete(s))
	require.NotNil(t, last.Recorded)
	assert.Equal(t, 25, last.Recorded.SubtasksCompleted)

	top := topEntries(t, board)
	require.Len(t, top, 1)
	assert.Equal(t, "Tester", top[0].Name)
	assert.Equal(t, 100, top[0].Score)
	assert.Equal(t, "tasks", top[0].Mode)

	// Undo and redo the last step: no second entry.
	_, err := eng.Remove(s, 4)
	require.NoError(t, err)
	assert.False(t, game.IsGameComplete(s))
	_, err = eng.Place(ctx, s, 4, stepAt(s, 4))
	require.NoError(t, err)
	assert.Len(t, topEntries(t, board), 1)
}

func TestRatio_ScoreTracksCurrentBoard(t *testing.T) {
	eng, board := newEngine(t, 8)
	s := newSession(t, eng, "flow")
	in := s.CurrentInstance()
	require.Equal(t, 8, in.Scenario.Len())

	expect := func() int {
		return int(math.Round(100 * float64(in.CorrectCount()) / 8))
	}

	// Wrong placement: nothing correct yet.
	_, err := eng.Place(ctx, s, 1, stepAt(s, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Score)

	_, err = eng.Remove(s, 1)
	require.NoError(t, err)
	res, err := eng.Place(ctx, s, 0, stepAt(s, 0))
	require.NoError(t, err)
	assert.Equal(t, 13, res.Score, "1/8 rounds half away from zero")
	assert.Equal(t, expect(), s.Score)

	for i := 1; i < 8; i++ {
		res, err = eng.Place(ctx, s, i, stepAt(s, i))
		require.NoError(t, err)
		assert.Equal(t, expect(), s.Score)
	}
	assert.Equal(t, 100, s.Score)
	assert.True(t, res.GameComplete)
	require.NotNil(t, res.Recorded)
	assert.Len(t, topEntries(t, board), 1)

	// Score falls again when the board changes.
	_, err = eng.Remove(s, 5)
	require.NoError(t, err)
	assert.Equal(t, 88, s.Score)
	assert.Equal(t, expect(), s.Score)
	assert.False(t, game.IsGameComplete(s))
}

func TestAllOrNothing_OnlyAcknowledgmentScores(t *testing.T) {
	eng, board := newEngine(t, 9)
	s := newSession(t, eng, "flows")

	last := solveCurrent(t, eng, s)
	assert.True(t, last.ScenarioComplete)
	assert.Equal(t, 0, s.Score)
	assert.Empty(t, s.Acknowledged)
	assert.Empty(t, topEntries(t, board))

	ack, err := eng.Acknowledge(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 100, ack.Delta)
	assert.Equal(t, 100, s.Score)
	assert.False(t, ack.GameComplete)
	require.NotNil(t, ack.Recorded)
	assert.Equal(t, s.Current, ack.Recorded.Scenario)
	assert.Len(t, topEntries(t, board), 1)

	in := s.CurrentInstance()
	assert.Equal(t, game.StateFrozen, in.State())
	_, err = eng.Remove(s, 0)
	assert.ErrorIs(t, err, game.ErrFrozen)
	_, err = eng.Place(ctx, s, 0, stepAt(s, 0))
	assert.ErrorIs(t, err, game.ErrFrozen)
	assert.ErrorIs(t, eng.Shuffle(s), game.ErrFrozen)
	_, err = eng.Acknowledge(ctx, s)
	assert.ErrorIs(t, err, game.ErrAcknowledged)
}

func TestAllOrNothing_FullGame(t *testing.T) {
	eng, board := newEngine(t, 10)
	s := newSession(t, eng, "flows")

	var ack game.AckResult
	for _, sc := range s.Mode.Scenarios {
		_, err := eng.SelectScenario(s, sc.ID)
		require.NoError(t, err)
		solveCurrent(t, eng, s)
		ack, err = eng.Acknowledge(ctx, s)
		require.NoError(t, err)
	}
	assert.True(t, ack.GameComplete)
	assert.Equal(t, 500, s.Score)
	assert.Equal(t, 25, game.CompletedSubtasks(s))
	assert.Len(t, topEntries(t, board), 5)
}

func TestAcknowledge_Rejections(t *testing.T) {
	eng, _ := newEngine(t, 11)

	flows := newSession(t, eng, "flows")
	_, err := eng.Place(ctx, flows, 0, stepAt(flows, 0))
	require.NoError(t, err)
	_, err = eng.Acknowledge(ctx, flows)
	assert.ErrorIs(t, err, game.ErrIncomplete)
	assert.Equal(t, 0, flows.Score)

	tasks := newSession(t, eng, "tasks")
	_, err = eng.Acknowledge(ctx, tasks)
	assert.ErrorIs(t, err, game.ErrPolicy)
}

func TestIsScenarioComplete(t *testing.T) {
	eng, _ := newEngine(t, 12)
	s := newSession(t, eng, "tasks")
	in := s.CurrentInstance()

	assert.False(t, game.IsScenarioComplete(in))
	for i := 0; i < 4; i++ {
		_, err := eng.Place(ctx, s, i, stepAt(s, i))
		require.NoError(t, err)
		assert.False(t, game.IsScenarioComplete(in), "slot %d still empty", 4)
		assert.Equal(t, game.StatePartial, in.State())
	}

	// Last slot filled with the last step: complete.
	_, err := eng.Place(ctx, s, 4, stepAt(s, 4))
	require.NoError(t, err)
	assert.True(t, game.IsScenarioComplete(in))
	assert.Equal(t, game.StateComplete, in.State())

	// Swap two steps: every slot filled, but not complete.
	_, err = eng.Remove(s, 3)
	require.NoError(t, err)
	assert.Equal(t, game.StatePartial, in.State())
	_, err = eng.Remove(s, 4)
	require.NoError(t, err)
	_, err = eng.Place(ctx, s, 3, stepAt(s, 4))
	require.NoError(t, err)
	_, err = eng.Place(ctx, s, 4, stepAt(s, 3))
	require.NoError(t, err)
	assert.Equal(t, 5, in.Filled())
	assert.False(t, game.IsScenarioComplete(in))
}

func TestSelectAndPlaceAt(t *testing.T) {
	eng, _ := newEngine(t, 13)
	s := newSession(t, eng, "tasks")

	_, err := eng.PlaceAt(ctx, s, 0)
	assert.ErrorIs(t, err, game.ErrNoSelection)

	assert.ErrorIs(t, eng.SelectPiece(s, game.StepKey{Scenario: "inventory-control", Step: "monitor-stock"}), game.ErrScenarioMismatch)

	require.NoError(t, eng.SelectPiece(s, stepAt(s, 0)))
	res, err := eng.PlaceAt(ctx, s, 0)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Nil(t, s.Selected)

	assert.ErrorIs(t, eng.SelectPiece(s, stepAt(s, 0)), game.ErrStepPlaced)

	// Occupied target keeps the selection.
	require.NoError(t, eng.SelectPiece(s, stepAt(s, 1)))
	_, err = eng.PlaceAt(ctx, s, 0)
	assert.ErrorIs(t, err, game.ErrSlotOccupied)
	require.NotNil(t, s.Selected)
	assert.Equal(t, stepAt(s, 1), *s.Selected)
}

func TestDropPiece_FilledTargetIsRefusedSilently(t *testing.T) {
	eng, _ := newEngine(t, 14)
	s := newSession(t, eng, "flow")

	res, err := eng.DropPiece(ctx, s, stepAt(s, 2), 2)
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	before := game.TakeSnapshot(s)
	res, err = eng.DropPiece(ctx, s, stepAt(s, 3), 2)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.NotEmpty(t, res.Reason)
	assert.Equal(t, before, game.TakeSnapshot(s))

	_, err = eng.DropPiece(ctx, s, stepAt(s, 3), 8)
	assert.ErrorIs(t, err, game.ErrInvalidSlot)
}

func TestShuffleAndRestart(t *testing.T) {
	eng, _ := newEngine(t, 15)
	s := newSession(t, eng, "tasks")
	_, err := eng.Place(ctx, s, 0, stepAt(s, 0))
	require.NoError(t, err)
	_, err = eng.Place(ctx, s, 3, stepAt(s, 1))
	require.NoError(t, err)

	require.NoError(t, eng.Shuffle(s))
	in := s.CurrentInstance()
	assert.Equal(t, 2, in.Filled())
	assert.Len(t, in.Pool(), 3)
	assert.Equal(t, 4, s.Score)

	require.NoError(t, eng.Restart(s))
	assert.Equal(t, 0, in.Filled())
	assert.Len(t, in.Pool(), 5)
	assert.Equal(t, 0, s.Score)
	assert.Empty(t, s.Credits)
}

func TestSelectScenario_KeepsInstances(t *testing.T) {
	eng, _ := newEngine(t, 16)
	s := newSession(t, eng, "tasks")
	_, err := eng.Place(ctx, s, 0, stepAt(s, 0))
	require.NoError(t, err)

	_, err = eng.SelectScenario(s, "order-fulfillment")
	require.NoError(t, err)
	assert.Equal(t, game.StateEmpty, s.CurrentInstance().State())

	_, err = eng.SelectScenario(s, "warehouse")
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentInstance().Filled())

	_, err = eng.SelectScenario(s, "returns")
	assert.ErrorIs(t, err, game.ErrUnknownScenario)
	assert.Equal(t, "warehouse", s.Current)
}

func TestShuffle_IsDeterministicForASeed(t *testing.T) {
	a, _ := newEngine(t, 99)
	b, _ := newEngine(t, 99)
	sa := newSession(t, a, "flow")
	sb := newSession(t, b, "flow")
	assert.Equal(t, poolKeys(sa.CurrentInstance()), poolKeys(sb.CurrentInstance()))

	require.NoError(t, a.Shuffle(sa))
	require.NoError(t, b.Shuffle(sb))
	assert.Equal(t, poolKeys(sa.CurrentInstance()), poolKeys(sb.CurrentInstance()))
}

func TestHint(t *testing.T) {
	eng, _ := newEngine(t, 17)
	s := newSession(t, eng, "tasks")
	hints := s.CurrentInstance().Scenario.Hints

	for i := 0; i < 20; i++ {
		assert.Contains(t, hints, eng.Hint(s))
	}

	h, err := eng.HintFor("flows", "returns")
	require.NoError(t, err)
	assert.NotEmpty(t, h)

	_, err = eng.HintFor("flows", "warehouse")
	assert.ErrorIs(t, err, game.ErrUnknownScenario)
}

func TestSnapshot_Progress(t *testing.T) {
	eng, _ := newEngine(t, 18)
	s := newSession(t, eng, "flows")

	snap := game.TakeSnapshot(s)
	assert.Equal(t, 500, snap.MaxScore)
	assert.Equal(t, 25, snap.TotalSubtasks)
	assert.Len(t, snap.Slots, 5)
	assert.Len(t, snap.Pool, 5)
	require.Len(t, snap.Scenarios, 5)
	assert.Equal(t, game.StatusStart, snap.Scenarios[0].Status)

	_, err := eng.Place(ctx, s, 0, stepAt(s, 0))
	require.NoError(t, err)
	snap = game.TakeSnapshot(s)
	assert.Equal(t, game.StatusInProgress, snap.Scenarios[0].Status)
	assert.True(t, snap.Slots[0].Correct)
	require.NotNil(t, snap.Slots[0].Step)
	assert.Equal(t, stepAt(s, 0), snap.Slots[0].Step.StepKey)

	for i := 1; i < 5; i++ {
		_, err := eng.Place(ctx, s, i, stepAt(s, i))
		require.NoError(t, err)
	}
	assert.Equal(t, game.StatusReady, game.TakeSnapshot(s).Scenarios[0].Status)

	_, err = eng.Acknowledge(ctx, s)
	require.NoError(t, err)
	snap = game.TakeSnapshot(s)
	assert.Equal(t, game.StatusComplete, snap.Scenarios[0].Status)
	assert.True(t, snap.Scenarios[0].Acknowledged)
	assert.Equal(t, 5, snap.CompletedSubtasks)
}
