// Package cache provides the short-TTL server-side response cache that
// absorbs duplicate requests and short upstream flakiness. It is a separate
// layer from the long-TTL freshness cache clients keep for themselves.
package cache

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

// DefaultTTL keeps entries intentionally short-lived: the layer exists to
// collapse duplicate-request storms, not to serve stale catalog data.
const DefaultTTL = 2 * time.Minute

// ResponseCache stores parse envelopes keyed by normalized URL and count.
// Safe for concurrent use.
type ResponseCache struct {
	lru *expirable.LRU[string, catalog.ParseResponse]
}

// New creates a ResponseCache with the given TTL (DefaultTTL when zero).
// The cache is unbounded: the key space in one process is a handful of
// category URLs, so eviction pressure never builds up.
func New(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		lru: expirable.NewLRU[string, catalog.ParseResponse](0, nil, ttl),
	}
}

// Key derives the cache key from the validated URL and the clamped count.
func Key(u *url.URL, count int) string {
	return fmt.Sprintf("%s::%d", u.String(), count)
}

// Get returns the cached envelope. Expired entries read as misses.
func (c *ResponseCache) Get(key string) (catalog.ParseResponse, bool) {
	return c.lru.Get(key)
}

// Set stores the envelope, overwriting any previous entry for the key.
func (c *ResponseCache) Set(key string, resp catalog.ParseResponse) {
	c.lru.Add(key, resp)
}

// Len reports the number of live entries, for tests and introspection.
func (c *ResponseCache) Len() int {
	return c.lru.Len()
}
