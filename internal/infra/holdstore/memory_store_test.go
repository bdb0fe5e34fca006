package holdstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AcquireReleaseAndExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "2026-10-19|9:00 AM", "a", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Acquire(ctx, "2026-10-19|9:00 AM", "b", 5*time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Acquire(ctx, "2026-10-19|9:00 AM", "a", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "owner can refresh its hold")

	require.NoError(t, store.Release(ctx, "2026-10-19|9:00 AM", "b"))
	holders, err := store.Holders(ctx, []string{"2026-10-19|9:00 AM", "2026-10-19|9:30 AM"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"2026-10-19|9:00 AM": "a"}, holders)

	now = now.Add(6 * time.Minute)
	holders, err = store.Holders(ctx, []string{"2026-10-19|9:00 AM"})
	require.NoError(t, err)
	require.Empty(t, holders)

	ok, err = store.Acquire(ctx, "2026-10-19|9:00 AM", "b", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Release(ctx, "2026-10-19|9:00 AM", "b"))
	holders, err = store.Holders(ctx, []string{"2026-10-19|9:00 AM"})
	require.NoError(t, err)
	require.Empty(t, holders)
}
