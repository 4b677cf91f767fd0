// internal/leaderboard/memory.go
//
// Slice-backed Board. Re-sorts with a stable sort after every insert so
// ties stay in insertion order.

package leaderboard

import (
	"context"
	"sort"
	"sync"
)

type memory struct {
	mu      sync.RWMutex // guards entries
	entries []Entry      // rank order
}

// NewMemory constructs an empty in-process Board.
func NewMemory() Board {
	return &memory{}
}

func (m *memory) Record(ctx context.Context, e Entry) (Entry, error) {
	e = normalize(e)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Score > m.entries[j].Score
	})
	return e, nil
}

func (m *memory) Top(ctx context.Context, k int) ([]Entry, error) {
	k = limit(k)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k > len(m.entries) {
		k = len(m.entries)
	}
	out := make([]Entry, k)
	copy(out, m.entries[:k])
	return out, nil
}
