package execution

import (
	"fmt"

	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// StepError reports the failure of a single step. It carries the step's
// 1-based position in the run so the process exit code can identify which
// step broke.
type StepError struct {
	Index int
	ID    step.ID
	Err   error
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index, e.ID.String(), e.Err)
}

// Unwrap returns the underlying step failure.
func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this failure: the failing
// step's 1-based index, capped at 255.
func (e *StepError) ExitCode() int {
	if e.Index < 1 {
		return 1
	}
	if e.Index > 255 {
		return 255
	}
	return e.Index
}
