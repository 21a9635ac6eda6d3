// Package module defines the contract between the pipeline engine and the
// pluggable content modules it executes, plus the registry that holds them.
package module

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/vk/textweave/internal/blackboard"
)

// Input is the caller-supplied payload handed unchanged to every module in
// a run.
type Input struct {
	// Subject is the primary topic or term the artifact is being built for.
	Subject string
	// Vars carries free-form caller parameters.
	Vars map[string]string
}

// Fingerprint returns a stable hash of the input, used to scope cache keys
// per input when a module's output depends on it.
func (in *Input) Fingerprint() string {
	h := fnv.New64a()
	if in == nil {
		return "0"
	}
	h.Write([]byte(in.Subject))
	keys := make([]string, 0, len(in.Vars))
	for k := range in.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(in.Vars[k]))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Output is what a module produces for one run.
type Output struct {
	// Content is the module's contribution to the assembled artifact.
	// Empty content is skipped by the assembler.
	Content string
	// SharedWrites are blackboard writes, committed at the batch boundary.
	SharedWrites map[string]any
	// Metadata carries free-form per-module annotations back to the caller.
	Metadata map[string]string
}

// Module is a pluggable unit of content production with declared
// dependencies. Implementations must be safe to call once per run; the
// engine never invokes the same module concurrently with itself.
type Module interface {
	// ID is the unique module identifier.
	ID() string
	// Dependencies lists the ids of modules that must complete first.
	Dependencies() []string
	// Priority breaks ties for deterministic intra-batch ordering in
	// metadata and logs. Higher runs earlier in that ordering.
	Priority() int
	// Produce generates the module's output. The blackboard reader only
	// exposes values committed by strictly earlier batches.
	Produce(ctx context.Context, input *Input, bb blackboard.Reader) (*Output, error)
}

// ProduceFunc is the signature of a module body.
type ProduceFunc func(ctx context.Context, input *Input, bb blackboard.Reader) (*Output, error)

// Func adapts a plain function into a Module. Used by built-in producers
// and tests.
type Func struct {
	Name      string
	DependsOn []string
	Rank      int
	Fn        ProduceFunc
}

// ID implements Module.
func (f *Func) ID() string { return f.Name }

// Dependencies implements Module.
func (f *Func) Dependencies() []string { return f.DependsOn }

// Priority implements Module.
func (f *Func) Priority() int { return f.Rank }

// Produce implements Module.
func (f *Func) Produce(ctx context.Context, input *Input, bb blackboard.Reader) (*Output, error) {
	return f.Fn(ctx, input, bb)
}
