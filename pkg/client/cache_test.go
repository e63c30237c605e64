package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

func newTestFreshnessCache(t *testing.T) *FreshnessCache {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return NewFreshnessCache(store)
}

func validPayload() CachePayload {
	return CachePayload{
		URL:          "https://kaspi.kz/shop/c/ram/",
		Page:         1,
		HasMore:      true,
		FetchedAtISO: "2026-08-29T10:00:00Z",
		Products: []catalog.Product{
			{ID: 102690437, Name: "Corsair 16 ГБ DDR4", Link: "https://kaspi.kz/shop/p/corsair-16gb-102690437/"},
		},
	}
}

func TestFreshnessCacheRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	if err := c.Write("ram", validPayload()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok := c.Read("ram")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got.Products) != 1 || got.Products[0].ID != 102690437 {
		t.Errorf("got %+v", got)
	}
	if got.ExpiresAtISO == "" {
		t.Error("Write should stamp an expiry")
	}
}

func TestFreshnessCacheExpiry(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if err := c.Write("ram", validPayload()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Written at 10:00, the entry expires at end of day, not 24h later.
	c.now = func() time.Time { return base.Add(13 * time.Hour) } // 23:00 same day
	if _, ok := c.Read("ram"); !ok {
		t.Error("expected hit before end of day")
	}

	c.now = func() time.Time { return base.Add(14 * time.Hour) } // 00:00 next day
	if _, ok := c.Read("ram"); ok {
		t.Error("expected miss after end of day")
	}
}

func TestFreshnessCacheExpiryCappedAt24h(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	// Written just after midnight, the 24h bound is tighter than end of day
	// never is; expiry still lands within the same day.
	base := time.Date(2026, 8, 29, 0, 10, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if err := c.Write("ram", validPayload()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok := c.Read("ram")
	if !ok {
		t.Fatal("expected hit")
	}
	expires, err := time.Parse(time.RFC3339, got.ExpiresAtISO)
	if err != nil {
		t.Fatalf("parse expiry: %v", err)
	}
	if expires.After(base.Add(24 * time.Hour)) {
		t.Errorf("expiry %v exceeds the 24h bound", expires)
	}
	if expires.Day() != base.Day() {
		t.Errorf("expiry %v should stay within the write day", expires)
	}
}

func TestFreshnessCacheRejectsLegacyLinks(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	payload := validPayload()
	payload.Products[0].Link = "https://kaspi.kz/p/corsair-16gb-102690437/"
	if err := c.Write("ram", payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, ok := c.Read("ram"); ok {
		t.Error("payloads with pre-migration product links must read as misses")
	}
}

func TestFreshnessCacheRejectsDegenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CachePayload)
	}{
		{"no products", func(p *CachePayload) { p.Products = nil }},
		{"zero page", func(p *CachePayload) { p.Page = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestFreshnessCache(t)
			payload := validPayload()
			tt.mutate(&payload)
			if err := c.Write("ram", payload); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if _, ok := c.Read("ram"); ok {
				t.Error("expected miss")
			}
		})
	}
}

func TestFreshnessCacheCorruptPayload(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	if err := c.store.Put(c.key("ram"), []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := c.Read("ram"); ok {
		t.Error("corrupt payloads must read as misses")
	}
}

func TestFreshnessCacheClear(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	if err := c.Write("ram", validPayload()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := c.Clear("ram"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Read("ram"); ok {
		t.Error("expected miss after clear")
	}
}

func TestFreshnessCacheKeyPrefix(t *testing.T) {
	t.Parallel()
	c := newTestFreshnessCache(t)

	if err := c.Write("ram", validPayload()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, ok, err := c.store.Get("kaspi_category_cache_v3_ram")
	if err != nil || !ok {
		t.Fatalf("expected versioned key on disk: ok=%v err=%v", ok, err)
	}
	var payload CachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
}
