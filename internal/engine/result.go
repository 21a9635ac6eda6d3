package engine

import (
	"fmt"
	"time"

	"github.com/vk/textweave/internal/module"
)

// Status is the terminal state of one module in a run.
type Status int

const (
	// StatusOK means the module produced output normally.
	StatusOK Status = iota
	// StatusFailed means the module returned an error or panicked. Its
	// content is empty.
	StatusFailed
	// StatusSkipped means the module never ran because a declared
	// dependency failed or was itself skipped.
	StatusSkipped
)

// String returns the wire/metadata spelling of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped_due_to_dependency_failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the engine's record for one module.
type Result struct {
	ModuleID string
	Status   Status
	// Output is nil unless Status is StatusOK.
	Output   *module.Output
	Err      error
	Duration time.Duration
}

// Content returns the module's artifact contribution; failed and skipped
// modules contribute nothing.
func (r *Result) Content() string {
	if r == nil || r.Status != StatusOK || r.Output == nil {
		return ""
	}
	return r.Output.Content
}

// BatchTiming records when one batch ran and how long it took.
type BatchTiming struct {
	Index    int
	Modules  []string
	Started  time.Time
	Duration time.Duration
}

// Report summarizes a run for the caller.
type Report struct {
	Batches []BatchTiming
	// Incomplete is set when the overall deadline expired and later
	// batches never started.
	Incomplete bool
	// FirstErr holds the first module error under fail-fast policy.
	FirstErr error
}

// ModuleError wraps a failure inside a single module's Produce.
type ModuleError struct {
	ModuleID string
	Err      error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %q failed: %v", e.ModuleID, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }
