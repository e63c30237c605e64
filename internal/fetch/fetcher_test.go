package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

func newTestFetcher(transport http.RoundTripper) *Fetcher {
	return New(Config{
		UserAgent:      testUserAgent,
		Accept:         "text/html,application/xhtml+xml",
		AcceptLanguage: "ru-RU,ru;q=0.9",
		Referer:        "https://kaspi.kz/",
		Timeout:        5 * time.Second,
		Transport:      transport,
	}, nil)
}

func TestFetcherReturnsBody(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		httpmock.NewStringResponder(http.StatusOK, "<html><body>listing</body></html>"))

	f := newTestFetcher(transport)
	body, err := f.Fetch(context.Background(), "https://kaspi.kz/shop/c/ram/")
	require.NoError(t, err)
	require.Contains(t, string(body), "listing")
}

func TestFetcherSendsBrowserIdentity(t *testing.T) {
	t.Parallel()

	var seen http.Header
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Clone()
			return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
		})

	f := newTestFetcher(transport)
	_, err := f.Fetch(context.Background(), "https://kaspi.kz/shop/c/ram/")
	require.NoError(t, err)

	require.Equal(t, testUserAgent, seen.Get("User-Agent"))
	require.Equal(t, "text/html,application/xhtml+xml", seen.Get("Accept"))
	require.Equal(t, "ru-RU,ru;q=0.9", seen.Get("Accept-Language"))
	require.Equal(t, "https://kaspi.kz/", seen.Get("Referer"))
}

func TestFetcherNonOKStatus(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		httpmock.NewStringResponder(http.StatusForbidden, "blocked"))

	f := newTestFetcher(transport)
	_, err := f.Fetch(context.Background(), "https://kaspi.kz/shop/c/ram/")

	var statusErr *UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusForbidden, statusErr.Status)
}

func TestFetcherTransportFailure(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		httpmock.NewErrorResponder(errors.New("connection reset")))

	f := newTestFetcher(transport)
	_, err := f.Fetch(context.Background(), "https://kaspi.kz/shop/c/ram/")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetcherRepeatedURL(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		httpmock.NewStringResponder(http.StatusOK, "page"))

	f := newTestFetcher(transport)
	for i := 0; i < 3; i++ {
		body, err := f.Fetch(context.Background(), "https://kaspi.kz/shop/c/ram/")
		require.NoError(t, err, "fetch %d", i+1)
		require.Equal(t, "page", string(body))
	}
	require.Equal(t, 3, transport.GetTotalCallCount())
}

func TestFetcherCanceledContext(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		httpmock.NewStringResponder(http.StatusOK, "page"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(transport)
	_, err := f.Fetch(ctx, "https://kaspi.kz/shop/c/ram/")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetcherCanceledMidFlight(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://kaspi.kz/shop/c/ram/",
		func(req *http.Request) (*http.Response, error) {
			time.Sleep(300 * time.Millisecond)
			return httpmock.NewStringResponse(http.StatusOK, "late"), nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := newTestFetcher(transport)
	start := time.Now()
	body, err := f.Fetch(ctx, "https://kaspi.kz/shop/c/ram/")

	require.Nil(t, body)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 300*time.Millisecond,
		"fetch should return on cancellation, not wait for the response")
}
