package auth

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheTTL is how long a verified snapshot is trusted before the
	// store is consulted again.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCacheSize bounds how many identities we keep around.
	DefaultCacheSize = 1024
)

// identityCache is a bounded TTL+LRU map of verified snapshots keyed by
// login identifier. Entries past the TTL read as misses and are evicted by
// the structure itself rather than lingering for the process lifetime.
// Safe for concurrent use; racing stores on the same key resolve
// last-write-wins.
type identityCache struct {
	entries *lru.LRU[string, Snapshot]
}

// NewIdentityCache returns a cache bounded by size entries and ttl age.
// Zero values fall back to the defaults.
func NewIdentityCache(size int, ttl time.Duration) IdentityCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &identityCache{
		entries: lru.NewLRU[string, Snapshot](size, nil, ttl),
	}
}

func (c *identityCache) Lookup(key string) (Snapshot, bool) {
	return c.entries.Get(key)
}

func (c *identityCache) Store(key string, snap Snapshot) {
	c.entries.Add(key, snap)
}

var _ IdentityCache = (*identityCache)(nil)
