package sourcing

import (
	"sync"
	"time"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// DefaultCacheTTL is how long a search result set stays fresh.
const DefaultCacheTTL = 30 * time.Minute

type cacheEntry struct {
	companies []model.SourcedCompany
	storedAt  time.Time
}

// Cache is an in-memory TTL cache of finished search result sets, keyed by
// the canonical criteria key. Stale entries are pruned lazily on write.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL; zero means DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached result set for key, if present and fresh.
func (c *Cache) Get(key string) ([]model.SourcedCompany, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.companies, true
}

// Set stores a result set and evicts every expired entry while it holds
// the lock.
func (c *Cache) Set(key string, companies []model.SourcedCompany) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{companies: companies, storedAt: now}
}

// Clear drops every entry and reports how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	return n
}
