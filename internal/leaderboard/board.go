// internal/leaderboard/board.go
//
// Leaderboard of finished games.
// Entries are appended and the list stays sorted by score (descending);
// equal scores keep insertion order. Nothing outlives the process.

package leaderboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTop is the number of rows returned when a caller passes k <= 0.
const DefaultTop = 10

// Entry is a single leaderboard row.
type Entry struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Score             int       `json:"score"`
	Mode              string    `json:"mode"`
	Scenario          string    `json:"scenario,omitempty"` // set for per-scenario completions
	SubtasksCompleted int       `json:"subtasksCompleted"`
	CompletedAt       time.Time `json:"completedAt"`
}

// Board records entries and serves the top of the ranking.
// Implementations must be safe for concurrent use.
type Board interface {
	// Record appends e and returns it with ID/CompletedAt filled in.
	Record(ctx context.Context, e Entry) (Entry, error)

	// Top returns the first k entries in rank order. k larger than the
	// board returns everything; k <= 0 means DefaultTop.
	Top(ctx context.Context, k int) ([]Entry, error)
}

// normalize fills the fields a caller may leave empty.
func normalize(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now().UTC()
	}
	return e
}

func limit(k int) int {
	if k <= 0 {
		return DefaultTop
	}
	return k
}
