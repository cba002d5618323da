// Package engine orchestrates the crawl-download-commit pipeline: walk the
// remote listing tree, mirror matching files locally, push changes in
// bounded batches, and regenerate the link manifest.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adhami/mirrorpush/internal/batch"
	"github.com/adhami/mirrorpush/internal/config"
	"github.com/adhami/mirrorpush/internal/crawl"
	"github.com/adhami/mirrorpush/internal/fetch"
	"github.com/adhami/mirrorpush/internal/gitops"
	"github.com/adhami/mirrorpush/internal/manifest"
)

// Engine wires the pipeline components together. All execution is strictly
// sequential; the only shared state is owned by this single control flow.
type Engine struct {
	Config  *config.Config
	Walker  *crawl.Walker
	Fetch   *fetch.Client
	Batches *batch.Coordinator
	Git     *gitops.Client
	Log     *slog.Logger
}

// Run executes the full pipeline. Individual download or push failures are
// aggregated into the result; only an unusable mirror directory or an
// invalid root URL abort the run.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}

	mirrorDir := e.Config.Mirror.Dir
	if err := os.MkdirAll(mirrorDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating mirror dir %s: %w", mirrorDir, err)
	}

	log.Info("discovering remote files", "root", e.Config.Remote.BaseURL)
	candidates, err := e.Walker.Walk(ctx, e.Config.Remote.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("walking remote tree: %w", err)
	}

	result := &RunResult{Candidates: len(candidates)}
	marker := filepath.Base(mirrorDir)

	for _, candidate := range candidates {
		rel, usedFallback := RelPath(candidate, marker)
		if rel == "" {
			log.Warn("cannot derive local path, skipping", "url", candidate)
			result.Failed++
			continue
		}
		if usedFallback {
			log.Warn("mirror marker absent, flattening to basename", "url", candidate, "path", rel)
		}
		dest := filepath.Join(mirrorDir, filepath.FromSlash(rel))

		outcome, err := e.Fetch.Download(ctx, candidate, dest)
		switch outcome {
		case fetch.OutcomeDownloaded:
			result.Downloaded++
			if fi, statErr := os.Stat(dest); statErr == nil {
				result.Bytes += fi.Size()
			}
			log.Info("downloaded", "path", dest)
			e.Batches.Add(ctx, dest)
		case fetch.OutcomeSkippedUnchanged:
			result.SkippedUnchanged++
			log.Debug("skipping, same size", "path", dest)
		case fetch.OutcomeSkippedTooLarge:
			result.SkippedTooLarge++
			log.Info("skipping, exceeds max size", "url", candidate)
		case fetch.OutcomeFailed:
			result.Failed++
			log.Warn("download failed", "url", candidate, "error", err)
		}

		if ctx.Err() != nil {
			break
		}
	}

	// Trailing partial batch.
	e.Batches.Flush(ctx)

	if err := e.syncManifest(ctx, result, log); err != nil {
		log.Warn("manifest sync failed", "error", err)
	}

	result.Batches = e.Batches.Results()
	return result, nil
}

// syncManifest regenerates the CSV manifest and, when git reports it
// changed, pushes it as a labeled batch.
func (e *Engine) syncManifest(ctx context.Context, result *RunResult, log *slog.Logger) error {
	gen := e.manifestGenerator(ctx)

	manifestPath := e.Config.Manifest.File
	if err := gen.Write(manifestPath); err != nil {
		return err
	}
	result.ManifestPath = manifestPath
	log.Info("manifest written", "path", manifestPath)

	changed, err := e.Git.ChangedFiles(ctx, []string{manifestPath})
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		log.Debug("manifest unchanged")
		return nil
	}

	e.Batches.FlushPaths(ctx, "manifest", changed)
	result.ManifestSynced = true
	return nil
}

func (e *Engine) manifestGenerator(ctx context.Context) *manifest.Generator {
	repoFullName := "unknown/unknown"
	if remoteURL, err := e.Git.RemoteURL(ctx); err == nil {
		repoFullName = gitops.RepoFullName(remoteURL)
	}

	return &manifest.Generator{
		MirrorDir:    e.Config.Mirror.Dir,
		MirrorName:   filepath.Base(e.Config.Mirror.Dir),
		BaseURL:      e.Config.Remote.BaseURL,
		RepoFullName: repoFullName,
		Branch:       e.Config.Git.Branch,
		Extensions:   e.Config.Mirror.Extensions,
	}
}
