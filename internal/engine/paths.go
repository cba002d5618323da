package engine

import (
	"net/url"
	"path"
	"strings"
)

// RelPath derives the mirror-relative path for a remote file URL: the
// substring of the URL path after the "/<marker>/" segment. When the marker
// is absent only the basename is used, flattening the directory structure;
// two distinct remote files can then collide on one local path, so callers
// should surface the fallback.
func RelPath(rawURL, marker string) (rel string, fallback bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	p := u.Path
	needle := "/" + marker + "/"
	if idx := strings.Index(p, needle); idx != -1 {
		return strings.TrimPrefix(p[idx+len(needle):], "/"), false
	}
	return path.Base(p), true
}
