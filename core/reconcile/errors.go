package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocalMatch marks an export skip: the store has no entity for the item.
	ErrNoLocalMatch = errors.New("no local match")
	// ErrConflictSkip marks a deliberate no-op from the state or date rules.
	ErrConflictSkip = errors.New("conflict skip")
	// ErrNotLoaded is returned when a run is used before LoadData.
	ErrNotLoaded = errors.New("index not loaded, call LoadData first")
	// ErrInvalidOptions rejects option combinations that cannot stay atomic.
	ErrInvalidOptions = errors.New("invalid reconcile options")
)

// FatalError aborts a run. It is returned when the governing transaction
// cannot be opened or committed.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// panicError turns a recovered panic into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
