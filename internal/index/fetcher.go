// Package index fetches remote HTML directory listings and extracts the
// hyperlink targets they contain.
package index

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/html"
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

// Fetcher retrieves anchor targets from HTML index pages.
type Fetcher struct {
	Client    HTTPClient
	UserAgent string
	Timeout   time.Duration // per-request bound (0 = context only)
}

// IndexError represents a failure to fetch or read an index page.
type IndexError struct {
	URL       string
	Operation string
	Err       error
	Hint      string
}

func (e *IndexError) Error() string {
	msg := fmt.Sprintf("index %s: %s failed: %s", e.URL, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// Links fetches pageURL and returns every anchor href on the page, excluding
// the parent-directory markers "../" and "/". It does not verify that the
// page is actually a directory listing; callers self-correct via extension
// filtering and trailing-slash detection.
func (f *Fetcher) Links(ctx context.Context, pageURL string) ([]string, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &IndexError{URL: pageURL, Operation: "fetch", Err: fmt.Errorf("creating request: %w", err)}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = DefaultHTTPClient{}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &IndexError{URL: pageURL, Operation: "fetch", Err: err, Hint: "check network connectivity and URL"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &IndexError{
			URL:       pageURL,
			Operation: "fetch",
			Err:       fmt.Errorf("HTTP %d", resp.StatusCode),
			Hint:      "check that the server allows directory listing",
		}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &IndexError{URL: pageURL, Operation: "parse", Err: err}
	}

	return collectHrefs(doc), nil
}

func collectHrefs(doc *html.Node) []string {
	var hrefs []string
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		for _, attr := range n.Attr {
			if attr.Key != "href" {
				continue
			}
			// Skip parent-directory anchors.
			if attr.Val == "../" || attr.Val == "/" {
				break
			}
			hrefs = append(hrefs, attr.Val)
			break
		}
	}
	return hrefs
}
