package catalog

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ValidateURL parses raw as an absolute http(s) URL and checks that its host
// is allowedHost or a subdomain of it.
func ValidateURL(raw, allowedHost string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	if u.Host == "" {
		return nil, ErrInvalidURL
	}
	host := strings.ToLower(u.Hostname())
	allowed := strings.ToLower(allowedHost)
	if host != allowed && !strings.HasSuffix(host, "."+allowed) {
		return nil, ErrHostNotAllowed
	}
	return u, nil
}

// ClampCount coerces the raw count parameter into [1, max]. Missing or
// non-numeric values fall back to def; out-of-range values are silently
// clamped rather than rejected.
func ClampCount(raw string, def, max int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	n := int(math.Floor(f))
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
