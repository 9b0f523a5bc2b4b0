// Package cache memoizes composed feed pages in Redis for a fixed time
// window. Entries expire on their TTL only; writes to the store never
// invalidate them. Staleness of the global feed within the window is an
// accepted, intentional property.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quill/domain"
)

// IndexFeedTTL is the window for which a composed index-feed page stays
// cached before a reader sees writes again.
const IndexFeedTTL = 20 * time.Second

// FeedCache holds composed feed pages. Construct one per process and share
// it; reads and writes are explicit calls, there are no invalidation hooks.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFeedCache returns a FeedCache on the given Redis client. A ttl of 0
// falls back to IndexFeedTTL.
func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	if ttl == 0 {
		ttl = IndexFeedTTL
	}
	return &FeedCache{rdb: rdb, ttl: ttl}
}

// indexKey identifies an index-feed page. The index feed is actor-agnostic,
// so the page number is the whole identity.
func indexKey(page int) string {
	return fmt.Sprintf("feed:index:%d", page)
}

// GetIndex returns the cached index-feed page and whether it was present.
// Cache errors count as misses; the store remains the source of truth.
func (c *FeedCache) GetIndex(ctx context.Context, page int) (*domain.Page, bool) {
	data, err := c.rdb.Get(ctx, indexKey(page)).Bytes()
	if err != nil {
		return nil, false
	}
	var p domain.Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// SetIndex stores a composed index-feed page for the TTL window.
// Storing is best-effort; a failed write just means the next read recomposes.
func (c *FeedCache) SetIndex(ctx context.Context, page int, p *domain.Page) {
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, indexKey(page), payload, c.ttl).Err()
}
