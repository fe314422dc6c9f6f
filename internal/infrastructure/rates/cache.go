package rates

import (
	"context"
	"sync"
	"time"

	"facture/internal/core/types"
)

// Source is the upstream rate lookup the cache wraps.
type Source interface {
	GetRate(ctx context.Context, from, to string) (types.Money, error)
}

// CachedSource memoizes rate lookups for a bounded time.
// Lookup failures are never cached.
type CachedSource struct {
	source Source
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	// now is overridable in tests
	now func() time.Time
}

type cacheEntry struct {
	rate      types.Money
	fetchedAt time.Time
}

// DefaultTTL is how long a fetched rate stays fresh.
const DefaultTTL = 15 * time.Minute

// NewCachedSource wraps source with a TTL cache.
// A non-positive ttl falls back to DefaultTTL.
func NewCachedSource(source Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetRate returns the cached rate when fresh, otherwise fetches upstream.
func (c *CachedSource) GetRate(ctx context.Context, from, to string) (types.Money, error) {
	key := from + "/" + to

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.rate, nil
	}

	rate, err := c.source.GetRate(ctx, from, to)
	if err != nil {
		return types.Zero(), err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{rate: rate, fetchedAt: c.now()}
	c.mu.Unlock()

	return rate, nil
}

// Invalidate drops all cached rates.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
