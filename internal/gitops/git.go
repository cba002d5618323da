package gitops

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNothingToCommit reports that a commit was attempted with no staged
// changes. It is a no-op for callers, not a failure.
var ErrNothingToCommit = errors.New("nothing to commit")

// Client wraps the git operations the sync pipeline needs.
type Client struct {
	Runner Runner
	Remote string // e.g. "origin"
	Branch string // empty -> push HEAD
}

// Stage adds paths to the index.
func (c *Client) Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.Runner.Run(ctx, append([]string{"add", "--"}, paths...)...)
	if err != nil {
		return fmt.Errorf("staging %d paths: %w", len(paths), err)
	}
	return nil
}

// Unstage removes paths from the index, keeping the working tree intact.
func (c *Client) Unstage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.Runner.Run(ctx, append([]string{"reset", "--"}, paths...)...)
	if err != nil {
		return fmt.Errorf("unstaging %d paths: %w", len(paths), err)
	}
	return nil
}

// Commit records the staged changes. Returns ErrNothingToCommit when the
// index holds no changes; the git CLI signals that case only through its
// exit status and message text.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.Runner.Run(ctx, "commit", "-m", message)
	if err != nil {
		if strings.Contains(err.Error(), "nothing to commit") ||
			strings.Contains(err.Error(), "nothing added to commit") {
			return ErrNothingToCommit
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Push pushes the configured branch (or the current HEAD) to the remote.
func (c *Client) Push(ctx context.Context) error {
	ref := c.Branch
	if ref == "" {
		ref = "HEAD"
	}
	if _, err := c.Runner.Run(ctx, "push", c.Remote, ref); err != nil {
		return fmt.Errorf("push %s %s: %w", c.Remote, ref, err)
	}
	return nil
}

// ChangedFiles returns the changed or untracked files among paths, relative
// to the repository root.
func (c *Client) ChangedFiles(ctx context.Context, paths []string) ([]string, error) {
	args := append([]string{"status", "--porcelain", "--untracked-files=all", "--"}, paths...)
	out, err := c.Runner.Run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Format: "XY <path>" (or "?? <path>" for untracked).
		parts := strings.SplitN(line, " ", 2)
		if len(parts) == 2 {
			files = append(files, strings.TrimSpace(parts[1]))
		}
	}
	return files, nil
}

// RemoteURL returns the URL of the configured remote.
func (c *Client) RemoteURL(ctx context.Context) (string, error) {
	out, err := c.Runner.Run(ctx, "remote", "get-url", c.Remote)
	if err != nil {
		return "", fmt.Errorf("remote get-url %s: %w", c.Remote, err)
	}
	return out, nil
}

// RepoFullName extracts "owner/repo" from a git remote URL. Handles the
// ssh ("git@github.com:owner/repo.git") and http(s) forms; anything else
// yields "unknown/unknown".
func RepoFullName(remoteURL string) string {
	var path string
	switch {
	case strings.HasPrefix(remoteURL, "git@github.com:"):
		path = strings.TrimPrefix(remoteURL, "git@github.com:")
	case strings.HasPrefix(remoteURL, "https://"), strings.HasPrefix(remoteURL, "http://"):
		_, after, found := strings.Cut(remoteURL, "github.com/")
		if !found {
			return "unknown/unknown"
		}
		path = after
	default:
		return "unknown/unknown"
	}
	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")
	if path == "" || !strings.Contains(path, "/") {
		return "unknown/unknown"
	}
	return path
}
