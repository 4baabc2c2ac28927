package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/settings"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestSettingsCache_Expiry(t *testing.T) {
	cache := NewSettingsCache()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := cache.Get(ctx, settings.KeyLendDay)
	assert.ErrorIs(t, err, settings.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, settings.KeyLendDay, "14", time.Minute))
	v, err := cache.Get(ctx, settings.KeyLendDay)
	require.NoError(t, err)
	assert.Equal(t, "14", v)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, settings.KeyLendDay)
	assert.ErrorIs(t, err, settings.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, settings.KeyLendDay, "21", 0))
	require.NoError(t, cache.Delete(ctx, settings.KeyLendDay))
	_, err = cache.Get(ctx, settings.KeyLendDay)
	assert.ErrorIs(t, err, settings.ErrCacheMiss)
}

func TestSessionStore_Blacklist(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "tok", time.Hour))
	revoked, err := store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionStore_Session(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, 7, map[string]any{"user_id": 7, "ip": "10.0.0.1"}, time.Hour))
	data, err := store.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "7", data["user_id"])

	require.NoError(t, store.DeleteSession(ctx, 7))
	_, err = store.GetSession(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
