package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/adhami/mirrorpush/internal/batch"
	"github.com/adhami/mirrorpush/internal/config"
	"github.com/adhami/mirrorpush/internal/crawl"
	"github.com/adhami/mirrorpush/internal/engine"
	"github.com/adhami/mirrorpush/internal/fetch"
	"github.com/adhami/mirrorpush/internal/gitops"
	"github.com/adhami/mirrorpush/internal/index"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

// newWalker builds the listing walker for cfg.
func newWalker(cfg *config.Config) *crawl.Walker {
	return &crawl.Walker{
		Index: &index.Fetcher{
			UserAgent: cfg.Remote.UserAgent,
			Timeout:   cfg.Remote.Timeout.Std(),
		},
		Extensions: cfg.Mirror.Extensions,
		Log:        slog.Default(),
	}
}

// newFetchClient builds the downloader for cfg.
func newFetchClient(cfg *config.Config) *fetch.Client {
	return &fetch.Client{
		UserAgent:   cfg.Remote.UserAgent,
		Timeout:     cfg.Remote.Timeout.Std(),
		MaxSize:     int64(cfg.Mirror.MaxFileSize),
		Retries:     cfg.Remote.MaxRetries,
		BackoffBase: cfg.Remote.BackoffBase.Std(),
		Log:         slog.Default(),
	}
}

// newGitClient builds the git adapter for cfg.
func newGitClient(cfg *config.Config) *gitops.Client {
	return &gitops.Client{
		Runner: gitops.ExecRunner{},
		Remote: cfg.Git.Remote,
		Branch: cfg.Git.Branch,
	}
}

// newEngine wires the full pipeline for cfg.
func newEngine(cfg *config.Config) *engine.Engine {
	git := newGitClient(cfg)
	return &engine.Engine{
		Config: cfg,
		Walker: newWalker(cfg),
		Fetch:  newFetchClient(cfg),
		Batches: &batch.Coordinator{
			Sync:          git,
			Size:          cfg.Mirror.BatchSize,
			MessagePrefix: "Update mirror files",
			Log:           slog.Default(),
		},
		Git: git,
		Log: slog.Default(),
	}
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
