package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymate/auth-backend/internal/testutil"
)

type memoryCache struct {
	mu   sync.Mutex
	ttls map[string]time.Duration
	err  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Add(_ context.Context, tokenID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.ttls[tokenID] = ttl
	return nil
}

func (c *memoryCache) Contains(_ context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.ttls[tokenID]
	return ok, nil
}

func TestRevocationList_RevokeWritesStoreAndCache(t *testing.T) {
	store := testutil.NewInvalidTokenStore()
	cache := newMemoryCache()
	list := NewRevocationList(store, cache)
	now := time.Now()
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(context.Background(), "jti-a", 1, now.Add(30*time.Minute)))

	exists, err := store.Exists(context.Background(), "jti-a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 30*time.Minute, cache.ttls["jti-a"])

	// Revoking twice is not an error.
	require.NoError(t, list.Revoke(context.Background(), "jti-a", 1, now.Add(30*time.Minute)))
	assert.Equal(t, 1, store.Len())
}

func TestRevocationList_IsRevoked(t *testing.T) {
	store := testutil.NewInvalidTokenStore()
	list := NewRevocationList(store, nil)
	require.NoError(t, list.Revoke(context.Background(), "jti-a", 1, time.Now().Add(time.Hour)))

	revoked, err := list.IsRevoked(context.Background(), "jti-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(context.Background(), "jti-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationList_CacheFailureFallsBackToStore(t *testing.T) {
	store := testutil.NewInvalidTokenStore()
	cache := newMemoryCache()
	cache.err = errors.New("redis down")
	list := NewRevocationList(store, cache)

	require.NoError(t, list.Revoke(context.Background(), "jti-a", 1, time.Now().Add(time.Hour)))

	revoked, err := list.IsRevoked(context.Background(), "jti-a")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationList_StoreFailure(t *testing.T) {
	store := testutil.NewInvalidTokenStore()
	store.Err = errors.New("db down")
	list := NewRevocationList(store, nil)

	assert.Error(t, list.Revoke(context.Background(), "jti-a", 1, time.Now().Add(time.Hour)))
	_, err := list.IsRevoked(context.Background(), "jti-a")
	assert.Error(t, err)
}

func TestRevocationList_ExpiredTokenSkipsCache(t *testing.T) {
	cache := newMemoryCache()
	list := NewRevocationList(testutil.NewInvalidTokenStore(), cache)

	require.NoError(t, list.Revoke(context.Background(), "jti-a", 1, time.Now().Add(-time.Minute)))
	assert.Empty(t, cache.ttls)
}
