package cache

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestInMemoryCache_GetSet(t *testing.T) {
	c := NewInMemoryCache(time.Hour)

	require.NoError(t, c.Set("en|common", map[string]any{"greeting": "Hello"}))

	val, ok := c.Get("en|common")
	require.True(t, ok, "Get should return true for existing key")
	assert.Equal(t, "Hello", val["greeting"])

	val, ok = c.Get("nonexistent")
	assert.False(t, ok, "Get should return false for missing key")
	assert.Nil(t, val)
}

func TestInMemoryCache_EntriesAreCopies(t *testing.T) {
	c := NewInMemoryCache(time.Hour)

	stored := map[string]any{
		"greeting": "Hello",
		"nav":      map[string]any{"home": "Home"},
		"list":     []any{"a", map[string]any{"b": "B"}},
	}
	require.NoError(t, c.Set("en|common", stored))

	stored["greeting"] = "changed after Set"
	stored["nav"].(map[string]any)["home"] = "changed after Set"

	first, ok := c.Get("en|common")
	require.True(t, ok)
	first["greeting"] = "changed after Get"
	first["nav"].(map[string]any)["home"] = "changed after Get"
	first["list"].([]any)[1].(map[string]any)["b"] = "changed after Get"

	second, ok := c.Get("en|common")
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"greeting": "Hello",
		"nav":      map[string]any{"home": "Home"},
		"list":     []any{"a", map[string]any{"b": "B"}},
	}, second)
}

func TestInMemoryCache_TTL(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(time.Minute).WithClock(clock.Now)

	require.NoError(t, c.Set("key1", map[string]any{"a": "b"}))

	clock.Advance(59 * time.Second)
	_, ok := c.Get("key1")
	assert.True(t, ok, "value should be available before TTL")

	clock.Advance(time.Second)
	_, ok = c.Get("key1")
	assert.False(t, ok, "value should be expired once age reaches TTL")
}

func TestInMemoryCache_LazyExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(time.Second).WithClock(clock.Now)

	require.NoError(t, c.Set("key1", map[string]any{"a": "b"}))
	clock.Advance(2 * time.Second)

	_, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entries are not removed on read")
	assert.Empty(t, c.Keys(), "expired entries are not listed")
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(0).WithClock(clock.Now)

	require.NoError(t, c.Set("key1", map[string]any{"a": "b"}))
	clock.Advance(24 * 365 * time.Hour)

	_, ok := c.Get("key1")
	assert.True(t, ok, "value should be available with no TTL")
}

func TestInMemoryCache_OverwriteResetsAge(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(time.Minute).WithClock(clock.Now)

	require.NoError(t, c.Set("key1", map[string]any{"v": "1"}))
	clock.Advance(50 * time.Second)
	require.NoError(t, c.Set("key1", map[string]any{"v": "2"}))
	clock.Advance(50 * time.Second)

	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "2", val["v"])
}

func TestInMemoryCache_DeleteAndPrefix(t *testing.T) {
	c := NewInMemoryCache(time.Hour)

	for _, key := range []string{"en|common", "en|checkout", "es|common", "enx|common"} {
		require.NoError(t, c.Set(key, map[string]any{}))
	}

	c.Delete("en|checkout")
	_, ok := c.Get("en|checkout")
	assert.False(t, ok)

	c.DeletePrefix("en|")
	keys := c.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"enx|common", "es|common"}, keys)
}

func TestInMemoryCache_Clear(t *testing.T) {
	c := NewInMemoryCache(time.Hour)

	require.NoError(t, c.Set("key1", map[string]any{}))
	require.NoError(t, c.Set("key2", map[string]any{}))
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache(time.Hour)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = c.Set(fmt.Sprintf("lng%d|ns", i%26), map[string]any{"i": i})
		}(i)
		go func(i int) {
			defer wg.Done()
			c.Get(fmt.Sprintf("lng%d|ns", i%26))
			if i%10 == 0 {
				c.DeletePrefix(fmt.Sprintf("lng%d|", i%26))
			}
		}(i)
	}

	wg.Wait()
}

var _ Store = (*InMemoryCache)(nil)
