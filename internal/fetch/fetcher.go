// Package fetch issues the single upstream GET for a category page using a
// Colly collector dressed up as an ordinary desktop browser.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shishl0/kaspi-catalog/internal/metrics"
)

// Config controls collector behavior and the browser identity presented to
// the upstream. The upstream may block or degrade requests that do not look
// like a real browser.
type Config struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Referer        string
	Timeout        time.Duration
	// RPS paces outbound requests toward the upstream host. Zero or
	// negative disables pacing.
	RPS   float64
	Burst int
	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// Fetcher performs upstream page fetches. Safe for concurrent use; each
// Fetch clones the base collector.
type Fetcher struct {
	cfg     Config
	base    *colly.Collector
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode; set the field directly to keep the collector synchronous.
	c := colly.NewCollector()
	c.Async = false
	transport := cfg.Transport
	if transport == nil {
		transport = newHTTPTransport()
	}
	c.WithTransport(transport)

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Fetcher{
		cfg:     cfg,
		base:    c,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Fetch executes one HTTP GET and returns the final status code and body.
// Redirects are followed transparently. Non-2xx statuses come back as
// *UpstreamStatusError, transport failures as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("outbound pacing: %w", err)
	}

	var (
		body     []byte
		status   int
		fetchErr error
	)

	collector := f.base.Clone()
	// The same category URL is fetched again every time its cache entry
	// lapses.
	collector.AllowURLRevisit = true
	// Deliver non-2xx responses to OnResponse so we can classify them
	// ourselves instead of relying on Colly's error mapping.
	collector.ParseHTTPErrorResponse = true
	collector.IgnoreRobotsTxt = true
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	collector.OnRequest(func(r *colly.Request) {
		if f.cfg.Accept != "" {
			r.Headers.Set("Accept", f.cfg.Accept)
		}
		if f.cfg.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
		}
		if f.cfg.Referer != "" {
			r.Headers.Set("Referer", f.cfg.Referer)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	start := time.Now()
	completed, runErr := f.runCollector(ctx, collector, rawURL)
	duration := time.Since(start)
	if !completed {
		// The visit goroutine may still be running and writing into the
		// hook-captured state above; do not read status, body, or
		// fetchErr on this path.
		metrics.ObserveUpstreamFetch(0, duration)
		f.logger.Warn("upstream fetch canceled",
			zap.String("url", rawURL),
			zap.Error(runErr),
		)
		return nil, &FetchError{Err: runErr}
	}
	if runErr != nil {
		fetchErr = runErr
	}

	switch {
	case status != 0 && (status < 200 || status > 299):
		metrics.ObserveUpstreamFetch(status, duration)
		f.logger.Warn("upstream returned error status",
			zap.String("url", rawURL),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return nil, &UpstreamStatusError{Status: status}
	case fetchErr != nil:
		metrics.ObserveUpstreamFetch(0, duration)
		f.logger.Warn("upstream fetch failed",
			zap.String("url", rawURL),
			zap.Error(fetchErr),
		)
		return nil, &FetchError{Err: fetchErr}
	}

	metrics.ObserveUpstreamFetch(status, duration)
	f.logger.Debug("upstream fetch completed",
		zap.String("url", rawURL),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)
	return body, nil
}

// runCollector runs the visit in a goroutine so the caller's context can
// interrupt it. completed reports whether the visit goroutine finished; when
// it is false the goroutine is still live and the collector hooks must not be
// read.
func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, rawURL string) (completed bool, err error) {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return true, fmt.Errorf("visit %s: %w", rawURL, err)
		}
		return true, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
