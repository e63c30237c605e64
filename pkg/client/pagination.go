package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

const (
	// BatchSize is how many products one page load contributes.
	BatchSize = 10
	// MaxPage bounds how deep pagination may go.
	MaxPage = 50
	// MaxTotalProducts caps the merged list across page loads.
	MaxTotalProducts = 120
	// emptyPageScanLimit bounds how many consecutive empty pages are
	// probed before falling back or giving up.
	emptyPageScanLimit = 6
)

// CategoryState is the accumulated view of one category across page loads.
type CategoryState struct {
	Products     []catalog.Product
	Page         int
	HasMore      bool
	FetchedAtISO string
}

// LoadCategory returns the category's products, serving a valid freshness
// cache entry when one exists and otherwise loading the first batch from
// the service.
func (c *Client) LoadCategory(ctx context.Context, cat Category) (CategoryState, error) {
	if c.cache != nil {
		if payload, ok := c.cache.Read(cat.Key); ok {
			page := payload.Page
			if page < 1 {
				page = 1
			}
			return CategoryState{
				Products:     payload.Products,
				Page:         page,
				HasMore:      payload.HasMore,
				FetchedAtISO: payload.FetchedAtISO,
			}, nil
		}
	}
	return c.fetchPageBatch(ctx, cat, 1, nil)
}

// Refresh bypasses the freshness cache and reloads the first batch.
func (c *Client) Refresh(ctx context.Context, cat Category) (CategoryState, error) {
	return c.fetchPageBatch(ctx, cat, 1, nil)
}

// LoadMore extends state with the next batch. When the page scan finds
// nothing, it falls back to re-requesting the base URL with an expanded
// count before declaring the category exhausted.
func (c *Client) LoadMore(ctx context.Context, cat Category, state CategoryState) (CategoryState, error) {
	if !state.HasMore {
		return state, nil
	}
	return c.fetchPageBatch(ctx, cat, state.Page+1, &state)
}

func (c *Client) fetchPageBatch(ctx context.Context, cat Category, startPage int, prev *CategoryState) (CategoryState, error) {
	var existing []catalog.Product
	if prev != nil {
		existing = prev.Products
	}

	page, resp, found, err := c.findFirstNonEmptyPage(ctx, cat.URL, startPage)
	if err != nil {
		return CategoryState{}, err
	}

	if !found {
		if prev != nil {
			if state, ok, fbErr := c.expandedCountFallback(ctx, cat, *prev); fbErr != nil {
				return CategoryState{}, fbErr
			} else if ok {
				return state, nil
			}
		}
		exhausted := CategoryState{Products: existing, Page: startPage - 1, HasMore: false}
		if prev != nil {
			exhausted.FetchedAtISO = prev.FetchedAtISO
		}
		if exhausted.Page < 1 {
			exhausted.Page = 1
		}
		return exhausted, nil
	}

	pageProducts := resp.Products
	if len(pageProducts) > BatchSize {
		pageProducts = pageProducts[:BatchSize]
	}

	merged := mergeProducts(existing, pageProducts)
	hasMore := len(pageProducts) == BatchSize && page < MaxPage
	if len(merged) >= MaxTotalProducts {
		merged = merged[:MaxTotalProducts]
		hasMore = false
	}

	state := CategoryState{
		Products:     merged,
		Page:         page,
		HasMore:      hasMore,
		FetchedAtISO: resp.FetchedAtISO,
	}
	c.writeCache(cat, state)
	return state, nil
}

// expandedCountFallback re-requests the category base URL asking for the
// whole accumulated batch plus one more page worth. The second return
// reports whether the fallback actually added products.
func (c *Client) expandedCountFallback(ctx context.Context, cat Category, prev CategoryState) (CategoryState, bool, error) {
	nextCount := len(prev.Products) + BatchSize
	if nextCount > MaxTotalProducts {
		nextCount = MaxTotalProducts
	}
	resp, err := c.Parse(ctx, cat.URL, nextCount)
	if err != nil {
		return CategoryState{}, false, err
	}

	merged := mergeProducts(prev.Products, resp.Products)
	if len(merged) <= len(prev.Products) {
		return CategoryState{}, false, nil
	}

	state := CategoryState{
		Products:     merged,
		Page:         prev.Page,
		HasMore:      len(merged) > len(prev.Products) && len(merged) < MaxTotalProducts,
		FetchedAtISO: resp.FetchedAtISO,
	}
	c.writeCache(cat, state)
	return state, true, nil
}

func (c *Client) findFirstNonEmptyPage(ctx context.Context, baseURL string, startPage int) (int, catalog.ParseResponse, bool, error) {
	page := startPage
	if page < 1 {
		page = 1
	}

	for step := 0; step < emptyPageScanLimit && page <= MaxPage; step++ {
		pageURL, err := buildPageURL(baseURL, page)
		if err != nil {
			return 0, catalog.ParseResponse{}, false, err
		}
		resp, err := c.Parse(ctx, pageURL, BatchSize)
		if err != nil {
			return 0, catalog.ParseResponse{}, false, err
		}
		if len(resp.Products) > 0 {
			return page, resp, true, nil
		}
		page++
	}
	return 0, catalog.ParseResponse{}, false, nil
}

func (c *Client) writeCache(cat Category, state CategoryState) {
	if c.cache == nil {
		return
	}
	// Cache write failures degrade to refetching; they are not fatal.
	_ = c.cache.Write(cat.Key, CachePayload{
		URL:          cat.URL,
		Page:         state.Page,
		HasMore:      state.HasMore,
		FetchedAtISO: state.FetchedAtISO,
		Products:     state.Products,
	})
}

// mergeProducts combines batches keyed by id and link, keeping first-seen
// order and letting newer entries replace older ones in place.
func mergeProducts(existing, incoming []catalog.Product) []catalog.Product {
	merged := make([]catalog.Product, 0, len(existing)+len(incoming))
	position := make(map[string]int, len(existing)+len(incoming))

	for _, product := range append(append([]catalog.Product{}, existing...), incoming...) {
		key := fmt.Sprintf("%d::%s", product.ID, product.Link)
		if idx, ok := position[key]; ok {
			merged[idx] = product
			continue
		}
		position[key] = len(merged)
		merged = append(merged, product)
	}
	return merged
}

// buildPageURL folds the page number into the category URL's own query
// parameters.
func buildPageURL(baseURL string, page int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse category url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
