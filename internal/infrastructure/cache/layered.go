package cache

import (
	"context"
	"path"
	"time"

	"github.com/kitaplik/reading-assistant/internal/core/ports"
)

// Layered reads through the in-process LRU before the shared backend and
// backfills the LRU on second-layer hits. Invalidation purges both layers.
type Layered struct {
	l1 *LRU
	l2 ports.ResultCache
}

func NewLayered(l1 *LRU, l2 ports.ResultCache) *Layered {
	return &Layered{l1: l1, l2: l2}
}

func (c *Layered) Get(ctx context.Context, key string) ([]byte, bool) {
	if value, ok := c.l1.Get(key); ok {
		return value, true
	}
	if c.l2 == nil {
		return nil, false
	}
	value, ok := c.l2.Get(ctx, key)
	if !ok {
		return nil, false
	}
	c.l1.Set(key, value, 0)
	return value, true
}

func (c *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.l1.Set(key, value, ttl)
	if c.l2 != nil {
		c.l2.Set(ctx, key, value, ttl)
	}
}

func (c *Layered) DeletePattern(ctx context.Context, pattern string) {
	c.l1.DeleteFunc(func(key string) bool {
		matched, err := path.Match(pattern, key)
		return err == nil && matched
	})
	if c.l2 != nil {
		c.l2.DeletePattern(ctx, pattern)
	}
}
