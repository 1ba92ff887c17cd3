package cache

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/stockroom/internal/config"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTTLCache[string, int](func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryProductCache(t *testing.T) {
	ctx := context.Background()
	holder := config.NewStaticInventoryConfigHolder(config.DefaultInventoryConfig())
	c := NewMemoryProductCache(holder)

	_, ok, err := c.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, 42, 0, &productdomain.Response{ID: "42", Name: "Tee", Total: 3}))
	got, ok, err := c.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Total)

	require.NoError(t, c.Invalidate(ctx, 42, 43))
	_, ok, _ = c.Get(ctx, 42)
	assert.False(t, ok)
}

func TestMemoryProductCacheDisabledByZeroTTL(t *testing.T) {
	cfg := config.DefaultInventoryConfig()
	cfg.ProductCacheTTL = 0
	c := NewMemoryProductCache(config.NewStaticInventoryConfigHolder(cfg))

	require.NoError(t, c.Set(context.Background(), 1, 0, &productdomain.Response{ID: "1"}))
	_, ok, _ := c.Get(context.Background(), 1)
	assert.False(t, ok)
}

func TestMemoryProductCacheDropsStaleSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProductCache(config.NewStaticInventoryConfigHolder(config.DefaultInventoryConfig()))

	gen, err := c.Generation(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, 7))
	require.NoError(t, c.Set(ctx, 7, gen, &productdomain.Response{ID: "7", Total: 1}))
	_, ok, _ := c.Get(ctx, 7)
	assert.False(t, ok)

	gen, err = c.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	require.NoError(t, c.Set(ctx, 7, gen, &productdomain.Response{ID: "7", Total: 2}))
	got, ok, _ := c.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Total)
}

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product:7", ProductKey(7))
}
