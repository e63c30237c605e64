package client

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

const (
	cacheKeyPrefix = "kaspi_category_cache_v3"
	// legacyLinkMarker invalidates payloads written before product links
	// were rewritten to the /shop/p/ path scheme.
	legacyLinkMarker = "kaspi.kz/p/"
	// freshnessTTL bounds how long a payload may be reused; entries also
	// never survive past the end of the day they were written.
	freshnessTTL = 24 * time.Hour
)

// CachePayload is the envelope persisted by the freshness cache.
type CachePayload struct {
	URL          string            `json:"url"`
	Page         int               `json:"page"`
	HasMore      bool              `json:"hasMore"`
	FetchedAtISO string            `json:"fetchedAtISO"`
	ExpiresAtISO string            `json:"expiresAtISO"`
	Products     []catalog.Product `json:"products"`
}

// FreshnessCache is the long-TTL client-side cache layered above the whole
// parse pipeline. Its lifecycle is independent of the server's short-TTL
// response cache: expiring one never expires the other.
type FreshnessCache struct {
	store *Store
	now   func() time.Time
}

// NewFreshnessCache wraps a Store.
func NewFreshnessCache(store *Store) *FreshnessCache {
	return &FreshnessCache{store: store, now: time.Now}
}

// Read returns the cached payload for a category when present and still
// valid. Invalid or expired payloads read as misses.
func (c *FreshnessCache) Read(categoryKey string) (CachePayload, bool) {
	data, ok, err := c.store.Get(c.key(categoryKey))
	if err != nil || !ok {
		return CachePayload{}, false
	}
	var payload CachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return CachePayload{}, false
	}
	if !c.isValid(payload) {
		return CachePayload{}, false
	}
	return payload, true
}

// Write persists the payload for a category, stamping its expiry.
func (c *FreshnessCache) Write(categoryKey string, payload CachePayload) error {
	payload.ExpiresAtISO = c.expiresAt()
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.store.Put(c.key(categoryKey), data)
}

// Clear drops the payload for a category.
func (c *FreshnessCache) Clear(categoryKey string) error {
	return c.store.Delete(c.key(categoryKey))
}

func (c *FreshnessCache) key(categoryKey string) string {
	return cacheKeyPrefix + "_" + categoryKey
}

func (c *FreshnessCache) isValid(payload CachePayload) bool {
	expires, err := time.Parse(time.RFC3339, payload.ExpiresAtISO)
	if err != nil {
		return false
	}
	if !c.now().Before(expires) {
		return false
	}
	if len(payload.Products) == 0 || payload.Page < 1 {
		return false
	}
	for _, product := range payload.Products {
		if strings.Contains(product.Link, legacyLinkMarker) {
			return false
		}
	}
	return true
}

// expiresAt returns the earlier of now+24h and the end of the current day.
func (c *FreshnessCache) expiresAt() string {
	now := c.now()
	in24h := now.Add(freshnessTTL)
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location())
	expiry := in24h
	if endOfDay.Before(expiry) {
		expiry = endOfDay
	}
	return expiry.Format(time.RFC3339)
}
