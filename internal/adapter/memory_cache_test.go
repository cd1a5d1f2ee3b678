package adapter

import (
	"context"
	"testing"
	"time"

	"ecg-academy/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSetDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "missing"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	now = now.Add(59 * time.Second)
	_, err := c.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	ok, err := c.SetNX(ctx, "k", "again", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "an expired key can be set again")
}

func TestCacheSessionTracker_SessionsAreIndependent(t *testing.T) {
	tracker := NewCacheSessionTracker(NewMemoryCache(), time.Hour)
	ctx := context.Background()

	a, _ := tracker.MarkLogin(ctx, "u1", "a")
	b, _ := tracker.MarkLogin(ctx, "u1", "b")
	again, _ := tracker.MarkLogin(ctx, "u1", "a")
	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, again)

	require.NoError(t, tracker.Clear(ctx, "u1", "a"))
	afterClear, _ := tracker.MarkLogin(ctx, "u1", "a")
	assert.True(t, afterClear)
}

func TestCacheSessionTracker_UsersDoNotShareSessionIDs(t *testing.T) {
	tracker := NewCacheSessionTracker(NewMemoryCache(), time.Hour)
	ctx := context.Background()

	first, err := tracker.MarkLogin(ctx, "u1", "tab-1")
	require.NoError(t, err)
	other, err := tracker.MarkLogin(ctx, "u2", "tab-1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, other)

	require.NoError(t, tracker.Clear(ctx, "u2", "tab-1"))
	stillMarked, _ := tracker.MarkLogin(ctx, "u1", "tab-1")
	assert.False(t, stillMarked)
}
