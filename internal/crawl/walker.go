// Package crawl walks a remote directory-listing tree breadth-first and
// collects the file URLs matching an extension allow-list.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// LinkLister fetches the anchor targets of one index page.
type LinkLister interface {
	Links(ctx context.Context, pageURL string) ([]string, error)
}

// Walker traverses directory listings starting at a root URL.
//
// The frontier is a FIFO queue seeded with the root; a visited set prevents
// re-listing directories reachable through cyclic or duplicate links. There
// is deliberately no depth or URL-count bound.
type Walker struct {
	Index      LinkLister
	Extensions []string // normalized: lower-case, leading dot
	Log        *slog.Logger
}

// Walk returns the candidate file URLs discovered under rootURL, deduplicated
// in first-discovery order. A failed listing skips that subtree; it does not
// abort the walk.
func (w *Walker) Walk(ctx context.Context, rootURL string) ([]string, error) {
	if _, err := url.Parse(rootURL); err != nil {
		return nil, fmt.Errorf("invalid root URL %q: %w", rootURL, err)
	}

	log := w.Log
	if log == nil {
		log = slog.Default()
	}

	frontier := []string{rootURL}
	visited := mapset.NewThreadUnsafeSet[string]()

	var candidates []string
	seenFiles := mapset.NewThreadUnsafeSet[string]()

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		current := frontier[0]
		frontier = frontier[1:]

		if !visited.Add(current) {
			continue
		}

		log.Debug("listing directory", "url", current)
		hrefs, err := w.Index.Links(ctx, current)
		if err != nil {
			log.Warn("listing failed, skipping subtree", "url", current, "error", err)
			continue
		}

		base, err := url.Parse(current)
		if err != nil {
			log.Warn("unparseable directory URL", "url", current, "error", err)
			continue
		}

		for _, href := range hrefs {
			ref, err := url.Parse(href)
			if err != nil {
				log.Debug("skipping unparseable href", "href", href, "error", err)
				continue
			}
			full := base.ResolveReference(ref)

			// A trailing slash marks a directory.
			if strings.HasSuffix(href, "/") {
				frontier = append(frontier, full.String())
				continue
			}

			if w.matchesExtension(full.Path) && seenFiles.Add(full.String()) {
				candidates = append(candidates, full.String())
			}
		}
	}

	log.Info("walk complete", "directories", visited.Cardinality(), "candidates", len(candidates))
	return candidates, nil
}

func (w *Walker) matchesExtension(urlPath string) bool {
	ext := strings.ToLower(path.Ext(urlPath))
	if ext == "" {
		return false
	}
	for _, allowed := range w.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
