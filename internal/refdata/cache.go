package refdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheSize = 128
	defaultCacheTTL  = 5 * time.Minute
)

type cacheEntry struct {
	result   Result
	storedAt time.Time
}

// Cache keeps recently loaded lists per token so that opening several wizards
// in a row does not refetch them. Tokens are stored only as a digest.
// A nil *Cache never hits.
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache returns a cache of size entries that expire after ttl. Zero values
// fall back to defaults.
func NewCache(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries, ttl: ttl, now: time.Now}, nil
}

func cacheKey(list List, token string) string {
	sum := sha256.Sum256([]byte(token))
	return string(list) + ":" + hex.EncodeToString(sum[:])
}

func (c *Cache) get(list List, token string) (Result, bool) {
	if c == nil {
		return Result{}, false
	}
	key := cacheKey(list, token)
	e, ok := c.entries.Get(key)
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.entries.Remove(key)
		return Result{}, false
	}
	return e.result, true
}

func (c *Cache) put(list List, token string, r Result) {
	if c == nil || r.Err != nil {
		return
	}
	c.entries.Add(cacheKey(list, token), cacheEntry{result: r, storedAt: c.now()})
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

// Len reports the number of cached lists, expired or not.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
