// Package execution plans and runs provisioning steps in sequence.
package execution

import (
	"time"

	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	stepID   step.ID
	status   step.Status
	err      error
	duration time.Duration
	change   step.Change
	applied  bool
}

// NewStepResult creates a new StepResult.
func NewStepResult(stepID step.ID, status step.Status, err error) StepResult {
	return StepResult{
		stepID: stepID,
		status: status,
		err:    err,
	}
}

// StepID returns the ID of the step that was executed.
func (r StepResult) StepID() step.ID {
	return r.stepID
}

// Status returns the final status of the step.
func (r StepResult) Status() step.Status {
	return r.status
}

// Error returns any error that occurred during execution.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the step took to execute.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Change returns the change that was applied, if any.
func (r StepResult) Change() step.Change {
	return r.change
}

// Applied returns true if the step performed work, as opposed to being
// satisfied before the run started.
func (r StepResult) Applied() bool {
	return r.applied
}

// Success returns true if the step ended in its desired state.
func (r StepResult) Success() bool {
	return r.status == step.StatusSatisfied
}

// Failed returns true if the step failed.
func (r StepResult) Failed() bool {
	return r.status == step.StatusFailed
}

// Skipped returns true if the step was never attempted.
func (r StepResult) Skipped() bool {
	return r.status == step.StatusSkipped
}

// WithDuration returns a new StepResult with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// WithChange returns a new StepResult with the change set.
func (r StepResult) WithChange(c step.Change) StepResult {
	r.change = c
	return r
}

// WithApplied returns a new StepResult marked as having performed work.
func (r StepResult) WithApplied(applied bool) StepResult {
	r.applied = applied
	return r
}
