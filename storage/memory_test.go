package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	offset := time.Duration(0)
	store.SetClock(func() time.Time { return base.Add(offset) })

	ctx := context.Background()
	require.NoError(t, store.SetWithExpiry(ctx, "k", []byte("v"), time.Minute))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	offset = 2 * time.Minute
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err := store.Keys(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStoreSetIfAbsent(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	offset := time.Duration(0)
	store.SetClock(func() time.Time { return base.Add(offset) })

	ctx := context.Background()

	set, err := store.SetIfAbsent(ctx, "lock", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = store.SetIfAbsent(ctx, "lock", []byte("2"), time.Minute)
	require.NoError(t, err)
	assert.False(t, set)

	// Expired keys no longer block the set.
	offset = 2 * time.Minute
	set, err = store.SetIfAbsent(ctx, "lock", []byte("3"), time.Minute)
	require.NoError(t, err)
	assert.True(t, set)
}

func TestMemoryStoreListRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, store.ListPush(ctx, "list", []byte(v)))
	}

	// Newest first, Redis LPUSH semantics.
	all, err := store.ListRange(ctx, "list", 0, -1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", string(all[0]))
	assert.Equal(t, "a", string(all[2]))

	head, err := store.ListRange(ctx, "list", 0, 1)
	require.NoError(t, err)
	require.Len(t, head, 2)
	assert.Equal(t, "c", string(head[0]))

	empty, err := store.ListRange(ctx, "missing", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreIncrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	n, err := store.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	val, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "2", string(val))
}
