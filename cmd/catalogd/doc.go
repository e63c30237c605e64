// Package main hosts the catalog parse service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and the parse endpoint. The url query param is
//     validated against the configured host before any work happens, and count is clamped into [1, max_count].
//   - Admission: internal/ratelimit gates each client with two checks, a minimum interval between requests and a
//     rolling per-minute ceiling. Rejections surface as HTTP 429 with a reason-specific message.
//   - Response cache: internal/cache keeps parse results for a short TTL keyed by url and count, so bursts of
//     identical requests hit the upstream host once.
//   - Fetch pipeline: internal/fetch wraps a Colly collector that presents a desktop browser identity (user agent,
//     accept headers, referer) and paces outbound requests with a token bucket. Non-2xx upstream statuses are
//     reported distinctly from transport failures so the API can map them to 502 vs 500.
//   - Extraction: internal/extract tries the listing markup first and falls back to the embedded product JSON blob
//     when the server-rendered cards are absent. Both paths normalize through internal/catalog so prices, ratings,
//     links, and image sets come out identical regardless of strategy.
//   - Configuration & plumbing: Viper populates config from env/files (CATALOG_ prefix); zap provides structured
//     logging; Prometheus metrics are exported via the metrics middleware and /metrics handler. The service is
//     stateless across requests apart from the in-memory limiter and cache.
//
// Operational notes:
//   - Shutdown is coordinated via signal.NotifyContext; in-flight requests get a 10s drain window.
//   - The limiter and cache are per-process. Running multiple replicas multiplies the effective upstream budget;
//     front with a shared limiter if that matters.
//   - Run locally: go run ./cmd/catalogd -config config.yaml (or rely solely on CATALOG_* env overrides).
package main
