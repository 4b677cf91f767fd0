// internal/leaderboard/sqlite.go
//
// SQLite-backed Board. Expects the leaderboard table from
// assets/migrations. The default DSN is a shared-cache in-memory
// database, so rows vanish with the process like the memory board.

package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore is a Board over a *sql.DB.
type SQLStore struct{ db *sql.DB }

// NewSQLStore wraps an already migrated database handle.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Record inserts e. The AUTOINCREMENT seq column breaks score ties.
func (s *SQLStore) Record(ctx context.Context, e Entry) (Entry, error) {
	e = normalize(e)
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO leaderboard (id, name, score, mode, scenario, subtasks, completed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Score, e.Mode, e.Scenario, e.SubtasksCompleted,
		e.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return e, nil
}

// Top returns rows ordered by score DESC, then insertion order.
func (s *SQLStore) Top(ctx context.Context, k int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, score, mode, scenario, subtasks, completed_at
        FROM leaderboard
        ORDER BY score DESC, seq ASC
        LIMIT ?`, limit(k),
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var completed string
		if err := rows.Scan(&e.ID, &e.Name, &e.Score, &e.Mode, &e.Scenario, &e.SubtasksCompleted, &completed); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, completed)
		if err != nil {
			return nil, fmt.Errorf("leaderboard entry %s: completed_at: %w", e.ID, err)
		}
		e.CompletedAt = at
		out = append(out, e)
	}
	return out, rows.Err()
}
