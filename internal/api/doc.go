// Package api hosts the HTTP server, middleware, and handlers for the
// catalog parse service. Notable routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /api/kaspi/parse?url=...&count=... for category extraction.
package api
