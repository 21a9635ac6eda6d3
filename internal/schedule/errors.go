package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle marks a dependency cycle. No schedule exists, so execution
	// never starts.
	ErrCycle = errors.New("dependency cycle detected")
	// ErrUnknownDependency marks a module depending on an unregistered id.
	ErrUnknownDependency = errors.New("unknown dependency")
)

// CycleError reports the module ids that could not be scheduled because of
// a dependency cycle. The list is a superset of one cycle: it contains
// every pending module once no further progress was possible.
type CycleError struct {
	IDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: involving %s", ErrCycle, strings.Join(e.IDs, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

func unknownDepError(moduleID, depID string) error {
	return fmt.Errorf("module %q: %w %q", moduleID, ErrUnknownDependency, depID)
}
