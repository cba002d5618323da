// Package batch groups successfully-mirrored paths into bounded units of
// work and flushes each one through the version-control sync boundary.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adhami/mirrorpush/internal/gitops"
)

// Syncer is the version-control boundary a batch is flushed through.
type Syncer interface {
	Stage(ctx context.Context, paths []string) error
	Unstage(ctx context.Context, paths []string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// Outcome is the per-batch sync result.
type Outcome int

const (
	OutcomePushed Outcome = iota
	OutcomeNothingToCommit
	OutcomeStageFailed
	OutcomeCommitFailed
	OutcomePushFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePushed:
		return "pushed"
	case OutcomeNothingToCommit:
		return "nothing to commit"
	case OutcomeStageFailed:
		return "stage failed"
	case OutcomeCommitFailed:
		return "commit failed"
	case OutcomePushFailed:
		return "push failed"
	default:
		return "unknown"
	}
}

// Result records one flushed batch.
type Result struct {
	Batch   int // monotonically increasing per run
	Label   string
	Paths   []string
	Outcome Outcome
	Err     error
}

// Coordinator accumulates changed paths and flushes them in batches of Size.
// A failed flush never blocks subsequent batches; failures are aggregated in
// the results for reporting.
type Coordinator struct {
	Sync          Syncer
	Size          int
	MessagePrefix string
	Log           *slog.Logger

	pending  []string
	batchNum int
	results  []Result
}

// Add ingests one successfully-changed path and flushes a full batch when
// the threshold is reached.
func (c *Coordinator) Add(ctx context.Context, path string) {
	c.pending = append(c.pending, path)
	if len(c.pending) >= c.Size {
		c.flushPending(ctx)
	}
}

// Flush pushes the trailing partial batch, if any. Call once after the
// candidate stream is exhausted.
func (c *Coordinator) Flush(ctx context.Context) {
	if len(c.pending) > 0 {
		c.flushPending(ctx)
	}
}

// FlushPaths pushes an ad-hoc labeled batch (e.g. the regenerated manifest)
// outside the normal accumulation flow.
func (c *Coordinator) FlushPaths(ctx context.Context, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	c.flush(ctx, label, paths)
}

// Results returns the outcome of every batch flushed so far.
func (c *Coordinator) Results() []Result {
	return c.results
}

// Pending returns the number of paths awaiting the next flush.
func (c *Coordinator) Pending() int {
	return len(c.pending)
}

func (c *Coordinator) flushPending(ctx context.Context) {
	paths := c.pending
	c.pending = nil
	c.flush(ctx, "", paths)
}

func (c *Coordinator) flush(ctx context.Context, label string, paths []string) {
	c.batchNum++
	num := c.batchNum

	unique := dedupe(paths)

	log := c.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("flushing batch", "batch", num, "files", len(unique))

	message := fmt.Sprintf("%s (batch %d)", c.MessagePrefix, num)
	if label != "" {
		message = fmt.Sprintf("%s (%s)", c.MessagePrefix, label)
	}

	record := func(outcome Outcome, err error) {
		c.results = append(c.results, Result{
			Batch:   num,
			Label:   label,
			Paths:   unique,
			Outcome: outcome,
			Err:     err,
		})
	}

	if err := c.Sync.Stage(ctx, unique); err != nil {
		log.Warn("stage failed", "batch", num, "error", err)
		record(OutcomeStageFailed, err)
		return
	}

	if err := c.Sync.Commit(ctx, message); err != nil {
		if errors.Is(err, gitops.ErrNothingToCommit) {
			log.Info("no changes to commit", "batch", num)
			// Unstage to keep the index clean; a failure here is harmless.
			if resetErr := c.Sync.Unstage(ctx, unique); resetErr != nil {
				log.Debug("unstage failed", "batch", num, "error", resetErr)
			}
			record(OutcomeNothingToCommit, nil)
			return
		}
		log.Warn("commit failed", "batch", num, "error", err)
		record(OutcomeCommitFailed, err)
		return
	}

	if err := c.Sync.Push(ctx); err != nil {
		log.Warn("push failed, committed locally", "batch", num, "error", err)
		record(OutcomePushFailed, err)
		return
	}

	log.Info("batch pushed", "batch", num, "files", len(unique))
	record(OutcomePushed, nil)
}

// dedupe removes duplicates, keeping first-occurrence order.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
