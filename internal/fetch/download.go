package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Outcome is the tri-state result of a download decision.
type Outcome int

const (
	OutcomeDownloaded Outcome = iota
	OutcomeSkippedUnchanged
	OutcomeSkippedTooLarge
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkippedUnchanged:
		return "skipped (unchanged)"
	case OutcomeSkippedTooLarge:
		return "skipped (too large)"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Download fetches rawURL into destPath.
//
// Decision order: a known remote size above MaxSize skips without touching
// the filesystem; a known size equal to an existing local file's size skips
// as unchanged; otherwise the body is streamed to a temporary sibling path
// and atomically renamed over destPath. Transfer failures are retried up to
// Retries times with the backoff delay doubling each attempt. After
// exhaustion the outcome is OutcomeFailed and no partial file remains at
// destPath.
func (c *Client) Download(ctx context.Context, rawURL, destPath string) (Outcome, error) {
	size, sizeKnown := c.RemoteSize(ctx, rawURL)

	if sizeKnown && c.MaxSize > 0 && size > c.MaxSize {
		return OutcomeSkippedTooLarge, nil
	}

	if sizeKnown {
		if fi, err := os.Stat(destPath); err == nil && fi.Size() == size {
			return OutcomeSkippedUnchanged, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return OutcomeFailed, fmt.Errorf("creating %s: %w", filepath.Dir(destPath), err)
	}

	attempts := c.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.transfer(ctx, rawURL, destPath)
		if lastErr == nil {
			return OutcomeDownloaded, nil
		}
		if c.Log != nil {
			c.Log.Warn("download attempt failed", "url", rawURL, "attempt", attempt, "error", lastErr)
		}
		if err := ctx.Err(); err != nil {
			return OutcomeFailed, &FetchError{URL: rawURL, Attempts: attempt, Err: err}
		}
		if attempt < attempts {
			delay := c.BackoffBase << (attempt - 1)
			if err := c.sleep(ctx, delay); err != nil {
				return OutcomeFailed, &FetchError{URL: rawURL, Attempts: attempt, Err: err}
			}
		}
	}

	return OutcomeFailed, &FetchError{URL: rawURL, Attempts: attempts, Err: lastErr}
}

// transfer streams one GET response into destPath via a temporary sibling
// file. The stable path is only ever replaced by a complete file.
func (c *Client) transfer(ctx context.Context, rawURL, destPath string) error {
	req, cancel, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	defer cancel()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	tmpPath := destPath + ".part"
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("installing %s: %w", destPath, err)
	}
	return nil
}
