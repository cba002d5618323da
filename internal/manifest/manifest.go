// Package manifest derives a CSV table of access URLs for every artifact in
// the local mirror tree. The manifest is regenerated in full on every run.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Files at or above this size are linked through the raw host instead of the
// repository browser, which refuses to render large blobs.
const rawURLThreshold = 20 << 20

const cdnPrefix = "https://cdnjs.cloudflare.com/ajax/libs/"

// Generator builds manifest rows from the mirror tree.
type Generator struct {
	MirrorDir    string   // local mirror tree on disk
	MirrorName   string   // path segment used in generated URLs
	BaseURL      string   // remote root the tree mirrors, ends with '/'
	RepoFullName string   // "owner/repo"
	Branch       string   // defaults to "main"
	Extensions   []string // normalized allow-list
}

// Row is one manifest entry for a local artifact.
type Row struct {
	Original  string
	Mirror    string
	Alternate string
	Size      int64
}

// Rows walks the mirror tree and returns one row per artifact matching the
// allow-list, sorted by original URL.
func (g *Generator) Rows() ([]Row, error) {
	var rows []Row

	err := filepath.WalkDir(g.MirrorDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !g.matches(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(g.MirrorDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		mirror, alternate := g.urlsFor(rel, info.Size())
		rows = append(rows, Row{
			Original:  g.BaseURL + rel,
			Mirror:    mirror,
			Alternate: alternate,
			Size:      info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", g.MirrorDir, err)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Original < rows[j].Original
	})
	return rows, nil
}

// Write generates the manifest CSV at path.
func (g *Generator) Write(path string) error {
	rows, err := g.Rows()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	_ = w.Write([]string{"Original URL", "Mirror URL", "Alternate URL", "File Size"})
	for _, row := range rows {
		_ = w.Write([]string{row.Original, row.Mirror, row.Alternate, formatSize(row.Size)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return f.Close()
}

// urlsFor selects the mirror and alternate URLs for one artifact. Small
// files get a repository-browser link plus a CDN link; large files get the
// raw link for both.
func (g *Generator) urlsFor(rel string, size int64) (mirror, alternate string) {
	branch := g.Branch
	if branch == "" {
		branch = "main"
	}
	if size < rawURLThreshold {
		mirror = fmt.Sprintf("https://github.com/%s/blob/%s/%s/%s", g.RepoFullName, branch, g.MirrorName, rel)
		alternate = cdnPrefix + rel
		return mirror, alternate
	}
	mirror = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", g.RepoFullName, branch, g.MirrorName, rel)
	return mirror, mirror
}

func (g *Generator) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range g.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func formatSize(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1<<20))
}
