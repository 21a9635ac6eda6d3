package cache

import "fmt"

// Scope controls whether a module's cache entries are shared across runs
// with different inputs or partitioned per input. Underlying loader content
// is often static (ScopeGlobal), but a module whose output depends on the
// run input must isolate its entries (ScopePerInput).
type Scope int

const (
	// ScopeGlobal keys entries by the raw key only.
	ScopeGlobal Scope = iota
	// ScopePerInput appends an input fingerprint to the key.
	ScopePerInput
)

// ParseScope maps a configuration string to a Scope. An empty string means
// ScopeGlobal.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "global":
		return ScopeGlobal, nil
	case "per_input":
		return ScopePerInput, nil
	default:
		return ScopeGlobal, fmt.Errorf("invalid cache scope %q: must be 'global' or 'per_input'", s)
	}
}

// Key derives the effective cache key for a base key and input fingerprint.
func (s Scope) Key(base, fingerprint string) string {
	if s == ScopePerInput && fingerprint != "" {
		return base + "@" + fingerprint
	}
	return base
}

// String returns the configuration spelling of the scope.
func (s Scope) String() string {
	if s == ScopePerInput {
		return "per_input"
	}
	return "global"
}
