package rebuild

import (
	"fmt"
)

// PreconditionError is fatal: the run must stop immediately with no
// rebuild submitted. Individual rebuild submission failures are not
// precondition errors; the orchestrator records those and keeps going.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}
