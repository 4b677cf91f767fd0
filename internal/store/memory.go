// internal/store/memory.go
//
// In-memory session store.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - The map is guarded by an RWMutex; each session additionally has its
//     own mutex so actions on one session run one at a time.
//   - With a TTL, a session expires that long after it was saved (the
//     lifetime of its cookie). Expired sessions are reported as missing
//     and swept on every Save.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/logistics-puzzle/internal/game"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Update runs fn with exclusive access to the session.
	// The error returned by fn is passed through.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// Delete forgets a session; unknown ids are ignored.
	Delete(ctx context.Context, id string) error

	// Len reports the number of live sessions.
	Len() int
}

// Option configures the memory store.
type Option func(*memory)

// WithTTL expires sessions d after they are saved. d <= 0 keeps them
// for the life of the process.
func WithTTL(d time.Duration) Option {
	return func(m *memory) { m.ttl = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *memory) { m.now = now }
}

type entry struct {
	mu      sync.Mutex
	sess    *game.Session
	expires time.Time // zero = never
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions map
	sessions map[string]*entry // keyed by Session.ID
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{sessions: make(map[string]*entry), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	now := m.now()
	e := &entry{sess: s}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, old := range m.sessions {
		if old.expired(now) {
			delete(m.sessions, id)
		}
	}
	m.sessions[s.ID] = e
	return nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if e.expired(m.now()) {
		_ = m.Delete(ctx, id)
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Len() int {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.sessions {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
