package cache

import (
	"errors"
	"fmt"
)

// ErrLoad marks a failed backing load. The failure is surfaced to every
// caller waiting on that load; the entry is never poisoned.
var ErrLoad = errors.New("cache load failed")

// LoadError wraps a loader failure with the key it occurred on.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v for key %q: %v", ErrLoad, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports ErrLoad so callers can match the taxonomy without unwrapping
// to the loader's own error.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
