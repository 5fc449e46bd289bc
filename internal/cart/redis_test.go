package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	cart := &domain.Cart{
		CustomerID: "cust-1",
		Lines: []domain.CartLine{
			{ProductID: 1, ProductName: "Paracetamol 500mg", Quantity: 2, UnitPrice: 12000},
		},
	}

	require.NoError(t, cache.Set(ctx, "cust-1", cart))

	got, err := cache.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", got.CustomerID)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(12000), got.Lines[0].UnitPrice)
}

func TestRedisCacheMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, err := cache.Get(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheDelete(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "cust-1", &domain.Cart{CustomerID: "cust-1"}))
	require.NoError(t, cache.Delete(ctx, "cust-1"))

	_, err := cache.Get(ctx, "cust-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheEntryExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "cust-1", &domain.Cart{CustomerID: "cust-1"}))

	// Base TTL plus the maximum jitter.
	mr.FastForward(21 * time.Minute)

	_, err := cache.Get(ctx, "cust-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
