package fetch

import (
	"context"
	"net/http"
)

// RemoteSize resolves the byte length of a remote file without downloading
// its body. Primary path is a HEAD request; if that fails or reports no
// length, a GET is issued and only its headers are read. Any error yields
// unknown (false), never a hard failure; callers must treat unknown size as
// "cannot skip".
func (c *Client) RemoteSize(ctx context.Context, rawURL string) (int64, bool) {
	if size, ok := c.sizeViaHead(ctx, rawURL); ok {
		return size, true
	}
	return c.sizeViaGet(ctx, rawURL)
}

func (c *Client) sizeViaHead(ctx context.Context, rawURL string) (int64, bool) {
	req, cancel, err := c.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, false
	}
	defer cancel()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.ContentLength < 0 {
		return 0, false
	}
	return resp.ContentLength, true
}

func (c *Client) sizeViaGet(ctx context.Context, rawURL string) (int64, bool) {
	req, cancel, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return 0, false
	}
	defer cancel()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, false
	}
	// Headers only; the body is closed without being consumed.
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 || resp.ContentLength < 0 {
		return 0, false
	}
	return resp.ContentLength, true
}
