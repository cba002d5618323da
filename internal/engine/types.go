package engine

import "github.com/adhami/mirrorpush/internal/batch"

// RunResult summarizes one pipeline run. The run always attempts every
// discovered candidate and the final manifest sync; this summary, not an
// error, is the expected observable outcome.
type RunResult struct {
	Candidates       int
	Downloaded       int
	SkippedUnchanged int
	SkippedTooLarge  int
	Failed           int
	Bytes            int64 // total size of downloaded artifacts

	ManifestPath   string
	ManifestSynced bool

	Batches []batch.Result
}

// PushFailures counts batches whose flush did not end in a push or a no-op.
func (r *RunResult) PushFailures() int {
	var n int
	for _, b := range r.Batches {
		switch b.Outcome {
		case batch.OutcomePushed, batch.OutcomeNothingToCommit:
		default:
			n++
		}
	}
	return n
}
