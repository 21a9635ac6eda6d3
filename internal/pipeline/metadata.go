package pipeline

import (
	"time"

	"github.com/vk/textweave/internal/engine"
)

// RunMetadata is returned to the caller after every run. The caller owns
// persistence and display; no state format is owned by this core.
type RunMetadata struct {
	// RunID uniquely identifies this invocation.
	RunID string
	// Executed lists modules that produced output, in schedule order.
	Executed []string
	// Failed lists modules whose Produce errored or panicked.
	Failed []string
	// Skipped lists modules that never ran because a dependency failed.
	Skipped []string
	// ModuleStatus maps every scheduled-and-reached module id to its
	// terminal status string.
	ModuleStatus map[string]string
	// Batches records per-batch start times and durations.
	Batches []engine.BatchTiming
	// CacheHits and CacheMisses are the content-cache deltas for this run.
	CacheHits   uint64
	CacheMisses uint64
	// Incomplete is set when the overall deadline stopped later batches
	// from starting.
	Incomplete bool
	// SeverityPolicy records the effective severity per validator rule id,
	// for auditability.
	SeverityPolicy map[string]string
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}
