package fetch

import "fmt"

// UpstreamStatusError indicates the upstream answered with a non-2xx status.
// Surfaced to callers as a gateway failure; never retried by this layer.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.Status)
}

// FetchError wraps a transport-level failure (DNS, timeout, reset).
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
