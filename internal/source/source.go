// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source opens the input document of a conversion. A location is
// either a local file path or an http(s) URL such as the export link of the
// open-data portal.
package source

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/bikecount/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 and 503 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 5

// Options configures how remote locations are fetched.
type Options struct {
	types.HTTPConfig

	// MaxRetries bounds retries on 429/503 responses (0 = default of 5).
	MaxRetries int

	// Client overrides the HTTP client built from Timeout.
	Client *http.Client
}

// IsURL reports whether location names an http or https resource.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Open returns a reader over the document at location. The caller must close
// it.
func Open(ctx context.Context, location string, opts Options) (io.ReadCloser, error) {
	if !IsURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", location, err)
		}
		return f, nil
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", location, err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	req.Header.Set("Accept", "application/rdf+xml, application/xml;q=0.9, */*;q=0.5")

	resp, err := doWithRetry(ctx, client, req, opts.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: HTTP %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}

// doWithRetry executes req and retries on HTTP 429 (Too Many Requests) and
// 503 (Service Unavailable) with exponential backoff starting at
// RetryBaseDelay. After exhausting retries the last response is returned so
// the caller can inspect it. A cancelled context during a wait returns
// ctx.Err().
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}
