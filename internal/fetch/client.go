// Package fetch resolves remote file sizes and downloads files incrementally
// into the local mirror tree.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient abstracts the HTTP transport for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient uses the standard library's default client.
type DefaultHTTPClient struct{}

func (DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// SleepFunc waits for d or until the context is canceled. Injectable so tests
// can exercise backoff without real waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client downloads remote files with size-based skipping and retry/backoff.
type Client struct {
	HTTP        HTTPClient
	UserAgent   string
	Timeout     time.Duration // per-request bound (0 = context only)
	MaxSize     int64         // skip files larger than this (0 = no limit)
	Retries     int           // total attempts per file
	BackoffBase time.Duration // first retry delay, doubled each attempt
	Sleep       SleepFunc
	Log         Logger
}

// Logger is the subset of *slog.Logger the client uses.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// FetchError reports a download that failed after exhausting retries.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("download %s failed after %d attempts: %s", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (c *Client) httpClient() HTTPClient {
	if c.HTTP == nil {
		return DefaultHTTPClient{}
	}
	return c.HTTP
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if c.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, cancel, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
