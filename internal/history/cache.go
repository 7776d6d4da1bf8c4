package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/primeprop/primeprop/internal/model"
)

// DefaultTTL matches the upstream stats API's daily refresh cadence.
const DefaultTTL = 24 * time.Hour

type cacheEntry struct {
	values   []float64
	cachedAt time.Time
}

// CachedSource memoizes another Source per (player, stat, n) with a TTL, so
// a slate with many lines on the same player costs one upstream fetch.
// Errors are not cached; the next call retries the upstream.
type CachedSource struct {
	inner Source
	ttl   time.Duration
	now   func() time.Time // injectable for testing

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedSource wraps inner with a TTL cache. ttl <= 0 uses DefaultTTL.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// WithNow sets a fixed clock for testing.
func (c *CachedSource) WithNow(now func() time.Time) *CachedSource {
	c.now = now
	return c
}

func (c *CachedSource) Values(ctx context.Context, player model.Player, stat model.StatType, n int) ([]float64, error) {
	key := fmt.Sprintf("%s|%s|%d", player.ID, stat, n)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.cachedAt) <= c.ttl {
		values := make([]float64, len(entry.values))
		copy(values, entry.values)
		c.mu.Unlock()
		return values, nil
	}
	c.mu.Unlock()

	values, err := c.inner.Values(ctx, player, stat, n)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{values: values, cachedAt: c.now()}
	c.mu.Unlock()

	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}
