// Package ratelimit implements a per-client sliding window limiter with a
// minimum inter-request spacing gate.
package ratelimit

import (
	"sync"
	"time"
)

// Reason labels why a request was rejected.
type Reason string

const (
	// ReasonTooFrequent fires when a client retries faster than the
	// minimum spacing, independent of the window counter.
	ReasonTooFrequent Reason = "too_frequent"
	// ReasonWindowExceeded fires when the per-window request ceiling is
	// reached.
	ReasonWindowExceeded Reason = "window_exceeded"
)

// LimitError reports a rejected request together with a human-readable
// message suitable for the API response body.
type LimitError struct {
	Reason  Reason
	Message string
}

func (e *LimitError) Error() string {
	return string(e.Reason) + ": " + e.Message
}

// Config holds limiter knobs. Zero values fall back to the defaults used in
// production.
type Config struct {
	Window      time.Duration
	MaxRequests int
	MinInterval time.Duration
}

const (
	defaultWindow      = time.Minute
	defaultMaxRequests = 20
	defaultMinInterval = 1200 * time.Millisecond
)

type entry struct {
	windowStart time.Time
	count       int
	lastAccept  time.Time
}

// Limiter tracks per-client request windows. State is in-process only; stale
// entries are harmless and get reset on next use, so there is no background
// sweeping.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*entry
	now     func() time.Time
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = defaultMaxRequests
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	return &Limiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow decides whether a request from the given client identity may proceed.
// It returns nil on acceptance. The check-and-update is atomic per call, so
// concurrent requests from one client cannot slip past the counting window.
func (l *Limiter) Allow(key string) *LimitError {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		l.entries[key] = &entry{windowStart: now, count: 1, lastAccept: now}
		return nil
	}

	if now.Sub(e.lastAccept) < l.cfg.MinInterval {
		return &LimitError{
			Reason:  ReasonTooFrequent,
			Message: "Too many requests. Slow down and try again.",
		}
	}

	if now.Sub(e.windowStart) > l.cfg.Window {
		e.windowStart = now
		e.count = 1
		e.lastAccept = now
		return nil
	}

	if e.count >= l.cfg.MaxRequests {
		return &LimitError{
			Reason:  ReasonWindowExceeded,
			Message: "Rate limit exceeded. Please wait a moment.",
		}
	}

	e.count++
	e.lastAccept = now
	return nil
}
