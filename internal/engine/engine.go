// Package engine executes a scheduled plan batch by batch.
//
// Within a batch, modules run concurrently under a bounded worker pool; a
// barrier joins the whole batch before the next one starts, so batches
// never overlap. Blackboard writes staged during a batch are committed at
// the barrier in ascending module-id order, which keeps shared state
// visibility independent of wall-clock completion order. The overall
// deadline is only checked at batch boundaries; in-flight modules always
// run to completion.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vk/textweave/internal/blackboard"
	"github.com/vk/textweave/internal/ctxlog"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/schedule"
)

// errAborted marks modules that were not launched because an earlier
// failure aborted a fail-fast run.
var errAborted = errors.New("run aborted by fail_fast policy")

// Options controls one engine run.
type Options struct {
	// MaxParallelism bounds concurrent modules within a batch. Zero or
	// negative means runtime.NumCPU().
	MaxParallelism int
	// FailFast aborts the run on the first module failure instead of
	// recording it and continuing.
	FailFast bool
	// Deadline, when non-zero, stops the run at the first batch boundary
	// past it. Remaining batches never start.
	Deadline time.Time
}

// Run executes the plan against the registry and returns per-module results
// plus a run report. Per-module failures are contained; Run itself never
// returns an error and never lets a module panic escape.
func Run(ctx context.Context, plan *schedule.Plan, input *module.Input, bb *blackboard.Board, reg *module.Registry, opts Options) (map[string]*Result, *Report) {
	logger := ctxlog.FromContext(ctx)

	par := opts.MaxParallelism
	if par <= 0 {
		par = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(par))

	results := make(map[string]*Result, len(plan.Order))
	report := &Report{}

	for bi, batch := range plan.Batches {
		if !opts.Deadline.IsZero() && !time.Now().Before(opts.Deadline) {
			logger.Warn("Overall deadline exceeded, not starting batch.", "batch", bi)
			report.Incomplete = true
			break
		}

		logger.Debug("Starting batch.", "batch", bi, "modules", batch)
		started := time.Now()

		// Decide skips up front: dependency results all come from earlier,
		// fully settled batches.
		var runnable []module.Module
		for _, id := range batch {
			m, ok := reg.Get(id)
			if !ok {
				results[id] = &Result{ModuleID: id, Status: StatusFailed, Err: fmt.Errorf("module %q not registered", id)}
				continue
			}
			if dep := failedDependency(m, results); dep != "" {
				logger.Warn("Skipping module due to upstream failure.", "moduleID", id, "dependency", dep)
				results[id] = &Result{ModuleID: id, Status: StatusSkipped, Err: fmt.Errorf("skipped due to failure of %q", dep)}
				continue
			}
			runnable = append(runnable, m)
		}

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			aborted bool
		)
		for _, m := range runnable {
			wg.Add(1)
			go func(m module.Module) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					mu.Lock()
					results[m.ID()] = &Result{ModuleID: m.ID(), Status: StatusFailed, Err: err}
					mu.Unlock()
					return
				}
				defer sem.Release(1)

				mu.Lock()
				if opts.FailFast && aborted {
					results[m.ID()] = &Result{ModuleID: m.ID(), Status: StatusSkipped, Err: errAborted}
					mu.Unlock()
					return
				}
				mu.Unlock()

				start := time.Now()
				out, err := produce(ctx, m, input, bb)
				elapsed := time.Since(start)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logger.Error("Module execution failed.", "moduleID", m.ID(), "error", err)
					aborted = true
					results[m.ID()] = &Result{ModuleID: m.ID(), Status: StatusFailed, Err: err, Duration: elapsed}
					return
				}
				results[m.ID()] = &Result{ModuleID: m.ID(), Status: StatusOK, Output: out, Duration: elapsed}
			}(m)
		}
		wg.Wait()

		// Barrier reached: commit this batch's blackboard writes in
		// ascending module-id order.
		var okIDs []string
		for _, id := range batch {
			r := results[id]
			if r == nil || r.Status != StatusOK {
				continue
			}
			bb.StageWrites(id, r.Output.SharedWrites)
			okIDs = append(okIDs, id)
		}
		bb.CommitBatch(okIDs)

		report.Batches = append(report.Batches, BatchTiming{
			Index:    bi,
			Modules:  batch,
			Started:  started,
			Duration: time.Since(started),
		})
		logger.Debug("Batch finished.", "batch", bi, "duration", time.Since(started))

		if opts.FailFast {
			if err := firstFailure(batch, results); err != nil {
				report.FirstErr = err
				report.Incomplete = bi < len(plan.Batches)-1
				break
			}
		}
	}

	return results, report
}

// produce invokes a module and converts panics into contained errors, so a
// misbehaving module can never take down the run.
func produce(ctx context.Context, m module.Module, input *module.Input, bb blackboard.Reader) (out *module.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &ModuleError{ModuleID: m.ID(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = m.Produce(ctx, input, bb)
	if err != nil {
		return nil, &ModuleError{ModuleID: m.ID(), Err: err}
	}
	if out == nil {
		out = &module.Output{}
	}
	return out, nil
}

// failedDependency returns the id of the first declared dependency that did
// not complete successfully, or "".
func failedDependency(m module.Module, results map[string]*Result) string {
	for _, dep := range m.Dependencies() {
		if r, ok := results[dep]; ok && r.Status != StatusOK {
			return dep
		}
	}
	return ""
}

// firstFailure returns the error of the first failed module in batch order.
func firstFailure(batch []string, results map[string]*Result) error {
	for _, id := range batch {
		if r := results[id]; r != nil && r.Status == StatusFailed && r.Err != nil {
			return r.Err
		}
	}
	return nil
}
