// Package client is a Go consumer of the catalog parse service. It mirrors
// the service's response shape, layers a long-lived freshness cache on top
// of the whole pipeline, pages through a category in fixed batches, and
// fills in product descriptions the server intentionally leaves blank.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
	"github.com/shishl0/kaspi-catalog/internal/enrich"
)

// APIError carries a non-200 response from the parse service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parse service: HTTP %d: %s", e.Status, e.Message)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache attaches a freshness cache; without one the client always asks
// the service.
func WithCache(cache *FreshnessCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithoutEnrichment disables description synthesis, returning products
// exactly as the service shaped them.
func WithoutEnrichment() Option {
	return func(c *Client) { c.enrich = false }
}

// Client talks to one parse service instance.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *FreshnessCache
	enrich  bool
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		enrich:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse asks the service to extract up to count products from pageURL.
func (c *Client) Parse(ctx context.Context, pageURL string, count int) (catalog.ParseResponse, error) {
	count = clampCount(count)

	endpoint := c.baseURL + "/api/kaspi/parse?" + url.Values{
		"url":   {pageURL},
		"count": {strconv.Itoa(count)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return catalog.ParseResponse{}, fmt.Errorf("build request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return catalog.ParseResponse{}, fmt.Errorf("call parse service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(res.Body).Decode(&body); decodeErr != nil || body.Error == "" {
			body.Error = http.StatusText(res.StatusCode)
		}
		return catalog.ParseResponse{}, &APIError{Status: res.StatusCode, Message: body.Error}
	}

	var parsed catalog.ParseResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return catalog.ParseResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if c.enrich {
		for i := range parsed.Products {
			parsed.Products[i].Description = enrich.Describe(parsed.Products[i].Name)
		}
	}
	return parsed, nil
}

func clampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > catalog.MaxCount {
		return catalog.MaxCount
	}
	return count
}
