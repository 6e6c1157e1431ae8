package mcp

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// lookupCache memoizes single-record lookups (components, utilities) whose
// child collections take several queries to assemble. It is cleared
// whenever the index is reloaded. A nil *lookupCache caches nothing.
type lookupCache struct {
	cache otter.Cache[string, any]
}

func newLookupCache(size int, ttl time.Duration) (*lookupCache, error) {
	if size <= 0 {
		return nil, nil
	}
	b := otter.MustBuilder[string, any](size)
	var (
		cache otter.Cache[string, any]
		err   error
	)
	if ttl > 0 {
		cache, err = b.WithTTL(ttl).Build()
	} else {
		cache, err = b.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup cache: %w", err)
	}
	return &lookupCache{cache: cache}, nil
}

// cachedLookup returns the cached value under kind/key, or loads and stores
// it. Load errors are not cached.
func cachedLookup[T any](c *lookupCache, kind, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	k := kind + "\x00" + key
	if v, ok := c.cache.Get(k); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.cache.Set(k, v)
	return v, nil
}

func (c *lookupCache) clear() {
	if c != nil {
		c.cache.Clear()
	}
}

func (c *lookupCache) close() {
	if c != nil {
		c.cache.Close()
	}
}

func (c *lookupCache) size() int {
	if c == nil {
		return 0
	}
	return c.cache.Size()
}
