package knowledge

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = KeyFor([]string{string(rune('a' + i))}, []string{"def"})
	}
	return keys
}

func newTestScheduler(t *testing.T, store Store, keys []Key) *Scheduler {
	t.Helper()
	s, err := NewScheduler(context.Background(), store, keys, SchedulerConfig{
		Rand: rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	return s
}

func TestSchedulerLoadCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	keys := testKeys(2)

	// One card enters mastered; the cap brings it back so the session has
	// something to do, and writes the demotion through.
	require.NoError(t, store.Put(ctx, keys[0], Record{Level: 3}))
	s := newTestScheduler(t, store, keys)

	assert.False(t, s.Done())
	assert.Equal(t, [4]int{1, 0, 1, 0}, s.Distribution())

	rec, ok, err := store.Get(ctx, keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{Level: 2}, rec)
}

func TestSchedulerTermination(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	keys := testKeys(3)
	s := newTestScheduler(t, NewMemoryStore(), keys)

	// Always answering correctly masters every card in a bounded number of
	// questions.
	for i := 0; i < 3*3+1; i++ {
		key, ok := s.Next()
		if !ok {
			break
		}
		require.NoError(t, s.Record(ctx, key, true))
	}
	assert.True(t, s.Done())
	_, ok := s.Next()
	assert.False(t, ok)
	assert.Equal(t, [4]int{0, 0, 0, 3}, s.Distribution())
}

func TestSchedulerAvoidsImmediateRepeat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestScheduler(t, NewMemoryStore(), testKeys(3))

	prev, ok := s.Next()
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Record(ctx, prev, false))
		key, ok := s.Next()
		require.True(t, ok)
		assert.NotEqual(t, prev, key)
		prev = key
	}
}

func TestSchedulerRepeatsWhenOnlyOneLeft(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	keys := testKeys(2)
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, keys[1], Record{Level: 3}))

	// The load cap brings the mastered card back; master it again so only
	// one selectable card remains.
	s := newTestScheduler(t, store, keys)
	require.NoError(t, s.Record(ctx, keys[1], true))

	for i := 0; i < 10; i++ {
		key, ok := s.Next()
		require.True(t, ok)
		assert.Equal(t, keys[0], key)
		require.NoError(t, s.Record(ctx, key, false))
	}
}

func TestSchedulerNeverSelectsMastered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	keys := testKeys(4)
	s := newTestScheduler(t, NewMemoryStore(), keys)

	// Master the first card mid-session.
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(ctx, keys[0], true))
	}
	for i := 0; i < 100; i++ {
		key, ok := s.Next()
		require.True(t, ok)
		assert.NotEqual(t, keys[0], key)
	}
}

func TestSchedulerWeights(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	keys := testKeys(2)
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, keys[1], Record{Level: 1}))

	// Weighting level 1 at zero leaves only the level-0 card selectable.
	s, err := NewScheduler(ctx, store, keys, SchedulerConfig{
		Weights: [3]float64{1, 0, 0},
		Rand:    rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		key, ok := s.Next()
		require.True(t, ok)
		assert.Equal(t, keys[0], key)
		require.NoError(t, s.Record(ctx, key, false))
	}
}

func TestSchedulerWriteThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	keys := testKeys(1)
	s := newTestScheduler(t, store, keys)

	require.NoError(t, s.Record(ctx, keys[0], true))
	rec, ok, err := store.Get(ctx, keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{Level: 1}, rec)

	// An isolated miss is persisted too.
	require.NoError(t, s.Record(ctx, keys[0], false))
	rec, _, err = store.Get(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, Record{Level: 1, Failures: 1}, rec)
}

func TestSchedulerEmpty(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, NewMemoryStore(), nil)
	assert.True(t, s.Done())
	_, ok := s.Next()
	assert.False(t, ok)
}
