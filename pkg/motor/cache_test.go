package motor_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsurely/motor-go/pkg/motor"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := motor.NewMemoryCache(10)
	ctx := context.Background()

	entry := motor.NewCacheEntry([]byte(`{"id":"org-1"}`), time.Hour)

	require.NoError(t, cache.Set(ctx, "orgsettings.org-1", entry))

	retrieved, err := cache.Get(ctx, "orgsettings.org-1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.True(t, cache.Has(ctx, "orgsettings.org-1"))
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := motor.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, motor.ErrCacheMiss)
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := motor.NewMemoryCache(10)
	ctx := context.Background()

	entry := &motor.CacheEntry{
		Data:      []byte("stale"),
		StoredAt:  time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	_, err := cache.Get(ctx, "key1")
	require.ErrorIs(t, err, motor.ErrCacheMiss)
	assert.Equal(t, 0, cache.Len(), "expired entries are dropped on read")
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := motor.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", motor.NewCacheEntry([]byte("1"), 0)))
	require.NoError(t, cache.Set(ctx, "b", motor.NewCacheEntry([]byte("2"), 0)))

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_MaxSize(t *testing.T) {
	t.Parallel()

	cache := motor.NewMemoryCache(2)
	ctx := context.Background()
	base := time.Now()

	for i, key := range []string{"first", "second", "third"} {
		entry := &motor.CacheEntry{Data: []byte(key), StoredAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, cache.Set(ctx, key, entry))
	}

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Has(ctx, "first"), "the oldest entry is evicted")
	assert.True(t, cache.Has(ctx, "second"))
	assert.True(t, cache.Has(ctx, "third"))

	require.NoError(t, cache.Set(ctx, "third", &motor.CacheEntry{Data: []byte("again"), StoredAt: base.Add(time.Minute)}))
	assert.Equal(t, 2, cache.Len(), "overwriting does not evict")
}

func TestCacheFactory(t *testing.T) {
	t.Parallel()

	memory, err := motor.NewCacheFromConfig(nil)
	require.NoError(t, err)
	assert.IsType(t, &motor.MemoryCache{}, memory)

	none, err := motor.NewCacheFromConfig(&motor.CacheConfig{Type: motor.CacheTypeNone})
	require.NoError(t, err)
	require.NoError(t, none.Set(context.Background(), "k", motor.NewCacheEntry([]byte("v"), 0)))
	assert.False(t, none.Has(context.Background(), "k"))

	_, err = motor.NewCacheFromConfig(&motor.CacheConfig{Type: motor.CacheTypeNATS})
	require.ErrorIs(t, err, motor.ErrNATSConfigRequired)

	_, err = motor.NewCacheFromConfig(&motor.CacheConfig{Type: "memcached"})
	require.ErrorIs(t, err, motor.ErrUnsupportedCacheType)

	assert.Equal(t, motor.CacheTypeMemory, motor.DefaultCacheConfig().Type)
}

type failingCache struct {
	*motor.NoOpCache
}

func (failingCache) Set(context.Context, string, *motor.CacheEntry) error {
	return errors.New("read only")
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	front := motor.NewMemoryCache(10)
	back := motor.NewMemoryCache(10)
	chain := motor.NewCacheChain(front, back)

	require.NoError(t, back.Set(ctx, "k", motor.NewCacheEntry([]byte("v"), 0)))

	entry, err := chain.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), entry.Data)
	assert.True(t, front.Has(ctx, "k"), "a hit back-fills the front layer")

	require.NoError(t, chain.Delete(ctx, "k"))
	assert.False(t, chain.Has(ctx, "k"))

	_, err = chain.Get(ctx, "k")
	require.ErrorIs(t, err, motor.ErrCacheMiss)

	broken := motor.NewCacheChain(front, failingCache{motor.NewNoOpCache()}, failingCache{motor.NewNoOpCache()})
	err = broken.Set(ctx, "k", motor.NewCacheEntry([]byte("v"), 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.True(t, front.Has(ctx, "k"))
}

func TestNATSKVCache(t *testing.T) {
	t.Parallel()

	url := os.Getenv("MOTOR_TEST_NATS_URL")
	if url == "" {
		t.Skip("MOTOR_TEST_NATS_URL not set")
	}

	cache, err := motor.NewNATSKVCache(&motor.NATSKVConfig{URL: url, Bucket: "motor_test"})
	require.NoError(t, err)

	t.Cleanup(func() { _ = cache.Close() })

	ctx := context.Background()
	require.NoError(t, cache.Clear(ctx))

	require.NoError(t, cache.Set(ctx, "orgsettings.org 1", motor.NewCacheEntry([]byte(`{"id":"org 1"}`), time.Minute)))
	assert.True(t, cache.Has(ctx, "orgsettings.org 1"))

	entry, err := cache.Get(ctx, "orgsettings.org 1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"org 1"}`, string(entry.Data))

	require.NoError(t, cache.Delete(ctx, "orgsettings.org 1"))

	_, err = cache.Get(ctx, "orgsettings.org 1")
	require.ErrorIs(t, err, motor.ErrCacheMiss)

	_, err = motor.NewNATSKVCache(&motor.NATSKVConfig{URL: url})
	require.ErrorIs(t, err, motor.ErrNATSConfigRequired)
}
