package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/domain"
)

func newTestCache(t *testing.T) (*FeedCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewFeedCache(rdb, IndexFeedTTL), mr
}

func TestGetIndexMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	page, ok := cache.GetIndex(context.Background(), 1)
	assert.False(t, ok)
	assert.Nil(t, page)
}

func TestSetIndexThenGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	stored := &domain.Page{
		Number:     1,
		TotalItems: 1,
		TotalPages: 1,
		Posts:      []domain.Post{{ID: 7, Text: "Hello world", UserID: 3}},
	}
	cache.SetIndex(ctx, 1, stored)

	got, ok := cache.GetIndex(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, stored.Number, got.Number)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "Hello world", got.Posts[0].Text)

	// Pages are cached independently.
	_, ok = cache.GetIndex(ctx, 2)
	assert.False(t, ok)
}

func TestIndexEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetIndex(ctx, 1, &domain.Page{Number: 1, TotalPages: 1})
	_, ok := cache.GetIndex(ctx, 1)
	require.True(t, ok)

	// Just inside the window the entry is still served.
	mr.FastForward(IndexFeedTTL - time.Second)
	_, ok = cache.GetIndex(ctx, 1)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok = cache.GetIndex(ctx, 1)
	assert.False(t, ok)
}

func TestGetIndexRedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetIndex(ctx, 1, &domain.Page{Number: 1, TotalPages: 1})
	mr.Close()

	// A broken cache reads as a miss, never an error.
	page, ok := cache.GetIndex(ctx, 1)
	assert.False(t, ok)
	assert.Nil(t, page)
}
