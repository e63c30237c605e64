package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shishl0/kaspi-catalog/internal/cache"
	"github.com/shishl0/kaspi-catalog/internal/catalog"
	"github.com/shishl0/kaspi-catalog/internal/fetch"
	"github.com/shishl0/kaspi-catalog/internal/metrics"
)

// parseCategory runs the full pipeline for one request: validate, rate
// limit, cache lookup, fetch, extract, assemble, cache store.
func (s *Server) parseCategory(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		metrics.ObserveParseRequest("invalid_url")
		s.writeError(w, http.StatusBadRequest, "Missing required query param: url")
		return
	}

	count := catalog.ClampCount(
		r.URL.Query().Get("count"),
		s.cfg.Catalog.DefaultCount,
		s.cfg.Catalog.MaxCount,
	)

	u, err := catalog.ValidateURL(rawURL, s.cfg.Catalog.AllowedHost)
	if err != nil {
		if errors.Is(err, catalog.ErrHostNotAllowed) {
			metrics.ObserveParseRequest("host_not_allowed")
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Only %s URLs are allowed", s.cfg.Catalog.AllowedHost))
			return
		}
		metrics.ObserveParseRequest("invalid_url")
		s.writeError(w, http.StatusBadRequest, "Invalid url query param")
		return
	}

	client := clientIdentity(r)
	if limitErr := s.limiter.Allow(client); limitErr != nil {
		metrics.ObserveParseRequest("rate_limited")
		metrics.ObserveRateLimitRejection(string(limitErr.Reason))
		s.logger.Info("request rate limited",
			zap.String("client", client),
			zap.String("reason", string(limitErr.Reason)),
		)
		s.writeError(w, http.StatusTooManyRequests, limitErr.Message)
		return
	}

	key := cache.Key(u, count)
	if cached, ok := s.cache.Get(key); ok {
		metrics.ObserveParseRequest("cache_hit")
		metrics.ObserveCacheEvent("hit")
		s.writeJSON(w, http.StatusOK, cached)
		return
	}
	metrics.ObserveCacheEvent("miss")

	body, err := s.fetcher.Fetch(r.Context(), u.String())
	if err != nil {
		var statusErr *fetch.UpstreamStatusError
		if errors.As(err, &statusErr) {
			metrics.ObserveParseRequest("upstream_error")
			s.writeError(w, http.StatusBadGateway,
				fmt.Sprintf("Kaspi fetch failed: HTTP %d", statusErr.Status))
			return
		}
		metrics.ObserveParseRequest("fetch_error")
		s.writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to parse kaspi page: %v", err))
		return
	}

	products, strategy := s.engine.Extract(string(body), count)
	if products == nil {
		// An empty batch is a valid "nothing matched" response.
		products = []catalog.Product{}
	}
	resp := catalog.ParseResponse{
		Products:     products,
		FetchedAtISO: s.now().UTC().Format(time.RFC3339),
	}

	s.cache.Set(key, resp)
	metrics.ObserveCacheEvent("store")
	metrics.ObserveParseRequest("ok")
	s.logger.Info("category parsed",
		zap.String("url", u.String()),
		zap.Int("count", count),
		zap.Int("products", len(products)),
		zap.String("strategy", strategy),
	)
	s.writeJSON(w, http.StatusOK, resp)
}

// clientIdentity derives the rate-limit key for a request: the first
// X-Forwarded-For hop when present, otherwise the remote address host.
func clientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if trimmed := strings.TrimSpace(first); trimmed != "" {
			return trimmed
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
