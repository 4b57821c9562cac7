package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

func newTestCache(t *testing.T) (*ListCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return &ListCache{client: client, ttl: 5 * time.Minute}, srv
}

func TestListCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stored := page{IDs: []string{"a", "b"}, Total: 2}
	require.NoError(t, c.Set(ctx, "leads", "status=new&page=1", stored))

	var got page
	require.NoError(t, c.Get(ctx, "leads", "status=new&page=1", &got))
	assert.Equal(t, stored, got)
}

func TestListCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got page
	err := c.Get(context.Background(), "leads", "page=1", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInvalidateEntity(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "leads", "page=1", page{Total: 1}))
	require.NoError(t, c.Set(ctx, "leads", "page=2", page{Total: 1}))
	require.NoError(t, c.Set(ctx, "cases", "page=1", page{Total: 3}))

	require.NoError(t, c.InvalidateEntity(ctx, "leads"))

	var got page
	assert.ErrorIs(t, c.Get(ctx, "leads", "page=1", &got), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "leads", "page=2", &got), ErrMiss)

	// Other entities keep their pages.
	require.NoError(t, c.Get(ctx, "cases", "page=1", &got))
	assert.Equal(t, 3, got.Total)
}

func TestListCacheExpiry(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "clients", "page=1", page{Total: 1}))
	srv.FastForward(10 * time.Minute)

	var got page
	assert.ErrorIs(t, c.Get(ctx, "clients", "page=1", &got), ErrMiss)
}
