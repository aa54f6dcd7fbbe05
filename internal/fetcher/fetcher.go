// Package fetcher downloads listing pages over HTTP with retry, backoff,
// and per-host rate limiting.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadWithParams fetches the URL with query parameters appended.
	DownloadWithParams(ctx context.Context, url string, params map[string]string) (io.ReadCloser, error)
}
