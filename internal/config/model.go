// Package config holds the format-agnostic model of a pipeline definition.
// Loaders (HCL today) translate their own schema into this model so the
// rest of the system never touches a parser type.
package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified representation of one pipeline definition.
type Model struct {
	Settings   Settings
	Modules    []*ModuleBlock
	Validation Validation
}

// Settings mirrors the recognized run options of the invocation API.
type Settings struct {
	MaxParallelism    int
	FailFast          bool
	OverallDeadlineMS int
	CacheTTLSeconds   int
	Separator         string
	Strict            bool
}

// ModuleBlock declares one module instance: which registered producer kind
// builds it, its identity, and its static wiring.
type ModuleBlock struct {
	// Kind names the producer factory that builds this module.
	Kind string
	// Name is the module id, unique within the pipeline.
	Name string
	// DependsOn lists module names that must complete first.
	DependsOn []string
	// Priority breaks intra-batch ordering ties (metadata only).
	Priority int
	// CacheScope is "global" or "per_input"; empty means global.
	CacheScope string
	// Args carries the kind-specific attributes, statically evaluated.
	Args map[string]cty.Value
}

// Validation selects the validator configuration for the pipeline.
type Validation struct {
	// RulePacks lists YAML rule pack paths to load.
	RulePacks []string
}

// Arg returns the named argument value, if present.
func (m *ModuleBlock) Arg(name string) (cty.Value, bool) {
	v, ok := m.Args[name]
	return v, ok
}
