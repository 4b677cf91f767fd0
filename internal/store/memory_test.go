package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/logistics-puzzle/internal/game"
)

func TestMemory_SaveUpdateDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	require.NoError(t, st.Save(ctx, &game.Session{ID: "s1", Player: "Ana"}))
	assert.Equal(t, 1, st.Len())

	err := st.Update(ctx, "s1", func(s *game.Session) error {
		s.Score = 8
		return nil
	})
	require.NoError(t, err)

	var score int
	require.NoError(t, st.Update(ctx, "s1", func(s *game.Session) error {
		score = s.Score
		return nil
	}))
	assert.Equal(t, 8, score)

	boom := errors.New("boom")
	assert.ErrorIs(t, st.Update(ctx, "s1", func(*game.Session) error { return boom }), boom)

	require.NoError(t, st.Delete(ctx, "s1"))
	assert.ErrorIs(t, st.Update(ctx, "s1", func(*game.Session) error { return nil }), ErrNotFound)
	assert.Equal(t, 0, st.Len())
}

func TestMemory_UpdateSerializesPerSession(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Save(ctx, &game.Session{ID: "s1"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Update(ctx, "s1", func(s *game.Session) error {
				s.Score++
				return nil
			})
		}()
	}
	wg.Wait()

	_ = st.Update(ctx, "s1", func(s *game.Session) error {
		assert.Equal(t, 50, s.Score)
		return nil
	})
}

func TestMemory_SessionsExpireAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore(WithTTL(time.Hour), WithClock(func() time.Time { return now }))

	require.NoError(t, st.Save(ctx, &game.Session{ID: "old"}))
	now = now.Add(30 * time.Minute)
	require.NoError(t, st.Save(ctx, &game.Session{ID: "young"}))
	assert.Equal(t, 2, st.Len())

	now = now.Add(31 * time.Minute)
	assert.Equal(t, 1, st.Len())
	assert.ErrorIs(t, st.Update(ctx, "old", func(*game.Session) error { return nil }), ErrNotFound)
	assert.NoError(t, st.Update(ctx, "young", func(*game.Session) error { return nil }))

	// a later Save sweeps everything past its expiry
	now = now.Add(time.Hour)
	require.NoError(t, st.Save(ctx, &game.Session{ID: "new"}))
	assert.Equal(t, 1, st.Len())
	assert.ErrorIs(t, st.Update(ctx, "young", func(*game.Session) error { return nil }), ErrNotFound)
}

func TestMemory_NoTTLKeepsSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore(WithClock(func() time.Time { return now }))

	require.NoError(t, st.Save(ctx, &game.Session{ID: "s1"}))
	now = now.Add(24 * 365 * time.Hour)
	assert.NoError(t, st.Update(ctx, "s1", func(*game.Session) error { return nil }))
}
