package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		HostRPS:    1000,
	})
}

func TestDownload_Success(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer srv.Close()

	body, err := fastFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(data))
	assert.Equal(t, "test-agent", gotUA.Load())
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "recovered")
	}))
	defer srv.Close()

	body, err := fastFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, "recovered", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	body, err := fastFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int32(2), calls.Load())
}

func TestDownload_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fastFetcher().Download(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fastFetcher().Download(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownloadWithParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "600000", r.URL.Query().Get("maxPrice"))
		assert.Equal(t, "30", r.URL.Query().Get("radius"))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	body, err := fastFetcher().DownloadWithParams(context.Background(), srv.URL, map[string]string{
		"maxPrice": "600000",
		"radius":   "30",
	})
	require.NoError(t, err)
	body.Close()
}

func TestDownload_ContextCancelled(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{HostRPS: 0.001, MaxRetries: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Limiter has no immediate token budget left after creation burst is
	// consumed; a cancelled context must surface, not hang.
	_, err := f.Download(ctx, "http://127.0.0.1:0/never")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, 3, f.opts.MaxRetries)
	assert.Equal(t, "listings-cli/1.0", f.opts.UserAgent)
	assert.InDelta(t, 2.0, f.opts.HostRPS, 0.001)
}

func TestNegativeMaxRetriesIsClamped(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{MaxRetries: -1, HostRPS: 1000})
	assert.Equal(t, 3, f.opts.MaxRetries)

	// A request must still attempt at least once rather than exiting the
	// retry loop with no response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close()
}
