// Package schedule resolves a module set into an ordered execution plan.
//
// Resolution is a Kahn-style layering: each batch collects every module
// whose dependencies are fully contained in earlier batches, so all modules
// within one batch can run in parallel. Intra-batch ordering by
// (priority desc, id asc) exists purely for stable metadata and logging;
// output correctness never depends on it.
package schedule

import (
	"sort"

	"github.com/vk/textweave/internal/module"
)

// Plan is the static execution order established at schedule time.
type Plan struct {
	// Batches holds module ids layered by dependency depth. Modules in one
	// batch have no dependencies on each other.
	Batches [][]string
	// Order is Batches flattened; the assembler follows it verbatim.
	Order []string
}

// BatchIndex returns the batch a module was scheduled in, or -1.
func (p *Plan) BatchIndex(id string) int {
	for i, batch := range p.Batches {
		for _, bid := range batch {
			if bid == id {
				return i
			}
		}
	}
	return -1
}

// Resolve computes the batch plan for the given modules. It fails with
// ErrUnknownDependency when a module references an unregistered id, and
// with a *CycleError when the dependency graph is cyclic.
func Resolve(mods []module.Module) (*Plan, error) {
	byID := make(map[string]module.Module, len(mods))
	for _, m := range mods {
		byID[m.ID()] = m
	}
	for _, m := range mods {
		for _, dep := range m.Dependencies() {
			if _, ok := byID[dep]; !ok {
				return nil, unknownDepError(m.ID(), dep)
			}
		}
	}

	scheduled := make(map[string]bool, len(mods))
	pending := make([]module.Module, len(mods))
	copy(pending, mods)

	plan := &Plan{}
	for len(pending) > 0 {
		var batch []module.Module
		var rest []module.Module
		for _, m := range pending {
			if depsScheduled(m, scheduled) {
				batch = append(batch, m)
			} else {
				rest = append(rest, m)
			}
		}

		if len(batch) == 0 {
			// No progress possible: every remaining module waits on another
			// remaining module, which is only possible with a cycle.
			ids := make([]string, 0, len(rest))
			for _, m := range rest {
				ids = append(ids, m.ID())
			}
			sort.Strings(ids)
			return nil, &CycleError{IDs: ids}
		}

		sortBatch(batch)
		ids := make([]string, 0, len(batch))
		for _, m := range batch {
			scheduled[m.ID()] = true
			ids = append(ids, m.ID())
		}
		plan.Batches = append(plan.Batches, ids)
		plan.Order = append(plan.Order, ids...)
		pending = rest
	}

	return plan, nil
}

func depsScheduled(m module.Module, scheduled map[string]bool) bool {
	for _, dep := range m.Dependencies() {
		if !scheduled[dep] {
			return false
		}
	}
	return true
}

// sortBatch orders candidates by (priority desc, id asc).
func sortBatch(batch []module.Module) {
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].Priority() != batch[j].Priority() {
			return batch[i].Priority() > batch[j].Priority()
		}
		return batch[i].ID() < batch[j].ID()
	})
}
