package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusvoice/internal/config"
)

func newTestCache(t *testing.T, maxEntries int) Cache {
	t.Helper()
	c := NewMemoryCache(&config.CacheConfig{MaxEntries: maxEntries}, zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t, 100)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), value)

	_, found = c.Get(ctx, "missing")
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t, 100)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))

	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t, 100)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	c := newTestCache(t, 100)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "suggestions:campus-a:all", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "suggestions:campus-a:42", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "suggestions:campus-b:all", []byte("3"), time.Minute))

	require.NoError(t, c.DeletePattern(ctx, "suggestions:campus-a:*"))

	_, found := c.Get(ctx, "suggestions:campus-a:all")
	assert.False(t, found)
	_, found = c.Get(ctx, "suggestions:campus-a:42")
	assert.False(t, found)
	_, found = c.Get(ctx, "suggestions:campus-b:all")
	assert.True(t, found)
}

func TestMemoryCacheEvictsWhenFull(t *testing.T) {
	c := newTestCache(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Minute))

	// The entry expiring soonest is the one evicted.
	_, found := c.Get(ctx, "short")
	assert.False(t, found)
	_, found = c.Get(ctx, "long")
	assert.True(t, found)
	_, found = c.Get(ctx, "new")
	assert.True(t, found)
}

func TestJSONHelpers(t *testing.T) {
	c := newTestCache(t, 100)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, c, "p", payload{Name: "library hours", Count: 7}, time.Minute))

	var got payload
	require.True(t, GetJSON(ctx, c, "p", &got))
	assert.Equal(t, "library hours", got.Name)
	assert.Equal(t, 7, got.Count)

	assert.False(t, GetJSON(ctx, c, "missing", &got))
}
