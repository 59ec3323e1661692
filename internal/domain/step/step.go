// Package step defines the executable unit of provisioning and the compiler
// that turns a manifest into an ordered sequence of them.
package step

// Step represents an idempotent unit of provisioning.
// Each step can check its current state, plan changes, and apply them.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() ID

	// Check determines the current status of this step.
	// Returns StatusSatisfied if no action is needed, StatusNeedsApply if
	// changes are required.
	Check(ctx RunContext) (Status, error)

	// Plan returns the change describing what this step will do.
	Plan(ctx RunContext) (Change, error)

	// Apply executes the step's changes.
	// This should be idempotent - running multiple times produces the same result.
	Apply(ctx RunContext) error

	// Explain returns human-readable context for this step.
	Explain(ctx ExplainContext) Explanation
}
