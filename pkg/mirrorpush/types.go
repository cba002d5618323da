// Package mirrorpush re-exports the pipeline result types as the public API.
// Users import "github.com/adhami/mirrorpush/pkg/mirrorpush" and use
// mirrorpush.RunResult, mirrorpush.BatchResult, etc.
package mirrorpush

import (
	"github.com/adhami/mirrorpush/internal/batch"
	"github.com/adhami/mirrorpush/internal/config"
	"github.com/adhami/mirrorpush/internal/engine"
	"github.com/adhami/mirrorpush/internal/fetch"
)

type Config = config.Config
type RunResult = engine.RunResult
type BatchResult = batch.Result
type BatchOutcome = batch.Outcome
type DownloadOutcome = fetch.Outcome

const (
	Downloaded       = fetch.OutcomeDownloaded
	SkippedUnchanged = fetch.OutcomeSkippedUnchanged
	SkippedTooLarge  = fetch.OutcomeSkippedTooLarge
	DownloadFailed   = fetch.OutcomeFailed
)
