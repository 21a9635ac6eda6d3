// Package pipeline is the invocation API: it resolves the module set into a
// plan, executes it, assembles the artifact and validates it, returning a
// structured result to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vk/textweave/internal/assemble"
	"github.com/vk/textweave/internal/blackboard"
	"github.com/vk/textweave/internal/cache"
	"github.com/vk/textweave/internal/ctxlog"
	"github.com/vk/textweave/internal/engine"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/schedule"
	"github.com/vk/textweave/internal/validate"
)

// ErrDeadlineExceeded is returned in strict mode when the overall deadline
// expired before all batches ran. Outside strict mode an expired deadline
// yields a partial result with Incomplete set instead of an error.
var ErrDeadlineExceeded = errors.New("pipeline deadline exceeded")

// Config holds the recognized options for one pipeline run.
type Config struct {
	// MaxParallelism bounds concurrent modules within a batch.
	MaxParallelism int
	// FailFast aborts the run on the first module failure. The default
	// best-effort policy records the failure and continues.
	FailFast bool
	// OverallDeadline bounds the whole run; checked at batch boundaries
	// only. Zero means no deadline.
	OverallDeadline time.Duration
	// CacheTTL is the default TTL handed to cache-backed producers that do
	// not configure their own.
	CacheTTL time.Duration
	// Separator joins module contents in the artifact.
	Separator string
	// Strict turns an expired deadline into ErrDeadlineExceeded instead of
	// a partial result.
	Strict bool
	// Rules is the validator rule set applied to the artifact.
	Rules []validate.Rule
	// Cache is the content cache used for hit/miss accounting. Nil means
	// the process-wide cache.Default().
	Cache *cache.Cache
}

// Result is what the caller receives from a completed run.
type Result struct {
	Artifact   string
	Metadata   RunMetadata
	Validation validate.Result
}

// Run executes the full pipeline. Topology errors (cycles, unknown
// dependencies) abort before execution. Per-module failures never surface
// as errors here outside fail-fast; the caller always receives a structured
// result.
func Run(ctx context.Context, input *module.Input, mods []module.Module, cfg Config) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	reg := module.NewRegistry()
	for _, m := range mods {
		reg.Register(m)
	}

	plan, err := schedule.Resolve(reg.All())
	if err != nil {
		// No partial result is meaningful without a valid schedule.
		return nil, fmt.Errorf("resolving execution order: %w", err)
	}
	logger.Debug("Execution plan resolved.", "batches", len(plan.Batches), "modules", len(plan.Order))

	contentCache := cfg.Cache
	if contentCache == nil {
		contentCache = cache.Default()
	}
	statsBefore := contentCache.Stats()

	opts := engine.Options{
		MaxParallelism: cfg.MaxParallelism,
		FailFast:       cfg.FailFast,
	}
	if cfg.OverallDeadline > 0 {
		opts.Deadline = started.Add(cfg.OverallDeadline)
	}

	bb := blackboard.New()
	results, report := engine.Run(ctx, plan, input, bb, reg, opts)

	if cfg.FailFast && report.FirstErr != nil {
		return nil, report.FirstErr
	}
	if cfg.Strict && report.Incomplete {
		return nil, ErrDeadlineExceeded
	}

	contents := make(map[string]string, len(results))
	for id, r := range results {
		contents[id] = r.Content()
	}
	sep := cfg.Separator
	if sep == "" {
		sep = assemble.DefaultSeparator
	}
	artifact := assemble.Assemble(contents, plan.Order, sep)

	validator := validate.New(cfg.Rules...)
	validation := validator.Validate(artifact)

	statsAfter := contentCache.Stats()
	meta := buildMetadata(plan, results, report, validator, statsBefore, statsAfter)
	meta.Duration = time.Since(started)

	logger.Info("Pipeline run finished.",
		"runID", meta.RunID,
		"executed", len(meta.Executed),
		"failed", len(meta.Failed),
		"skipped", len(meta.Skipped),
		"incomplete", meta.Incomplete,
		"validationOK", validation.OK,
	)

	return &Result{Artifact: artifact, Metadata: meta, Validation: validation}, nil
}

func buildMetadata(plan *schedule.Plan, results map[string]*engine.Result, report *engine.Report, validator *validate.Validator, before, after cache.Stats) RunMetadata {
	meta := RunMetadata{
		RunID:          uuid.NewString(),
		Batches:        report.Batches,
		Incomplete:     report.Incomplete,
		CacheHits:      after.Hits - before.Hits,
		CacheMisses:    after.Misses - before.Misses,
		SeverityPolicy: validator.SeverityPolicy(),
		ModuleStatus:   make(map[string]string, len(results)),
	}
	for _, id := range plan.Order {
		r, ok := results[id]
		if !ok {
			continue
		}
		meta.ModuleStatus[id] = r.Status.String()
		switch r.Status {
		case engine.StatusOK:
			meta.Executed = append(meta.Executed, id)
		case engine.StatusFailed:
			meta.Failed = append(meta.Failed, id)
		case engine.StatusSkipped:
			meta.Skipped = append(meta.Skipped, id)
		}
	}
	return meta
}
