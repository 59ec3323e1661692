package execution

import (
	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// PlanEntry represents a single step's planned execution.
type PlanEntry struct {
	step   step.Step
	status step.Status
	change step.Change
	err    error
}

// NewPlanEntry creates a new PlanEntry.
func NewPlanEntry(s step.Step, status step.Status, change step.Change) PlanEntry {
	return PlanEntry{
		step:   s,
		status: status,
		change: change,
	}
}

// WithCheckError returns a copy of the entry carrying the error that kept
// the step's status unknown.
func (e PlanEntry) WithCheckError(err error) PlanEntry {
	e.err = err
	return e
}

// Step returns the step to be executed.
func (e PlanEntry) Step() step.Step {
	return e.step
}

// Status returns the status observed while planning.
func (e PlanEntry) Status() step.Status {
	return e.status
}

// Change returns the planned change.
func (e PlanEntry) Change() step.Change {
	return e.change
}

// CheckError returns the error that prevented a status check, or nil.
func (e PlanEntry) CheckError() error {
	return e.err
}

// PlanSummary provides aggregate statistics about a plan.
type PlanSummary struct {
	Total      int
	NeedsApply int
	Satisfied  int
	Unknown    int
}

// Plan is the ordered list of steps a run would execute, with the status
// each step reported at planning time.
type Plan struct {
	entries []PlanEntry
}

// NewPlan creates an empty Plan.
func NewPlan() *Plan {
	return &Plan{
		entries: make([]PlanEntry, 0),
	}
}

// Add appends a plan entry.
func (p *Plan) Add(entry PlanEntry) {
	p.entries = append(p.entries, entry)
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	return len(p.entries)
}

// IsEmpty returns true if there are no entries.
func (p *Plan) IsEmpty() bool {
	return len(p.entries) == 0
}

// Entries returns all plan entries in execution order.
func (p *Plan) Entries() []PlanEntry {
	entries := make([]PlanEntry, len(p.entries))
	copy(entries, p.entries)
	return entries
}

// NeedsApply returns the entries that require execution.
func (p *Plan) NeedsApply() []PlanEntry {
	result := make([]PlanEntry, 0)
	for _, e := range p.entries {
		if e.status.NeedsAction() {
			result = append(result, e)
		}
	}
	return result
}

// HasChanges returns true if any step would perform work.
func (p *Plan) HasChanges() bool {
	for _, e := range p.entries {
		if e.status.NeedsAction() {
			return true
		}
	}
	return false
}

// Summary returns aggregate statistics.
func (p *Plan) Summary() PlanSummary {
	summary := PlanSummary{Total: len(p.entries)}
	for _, e := range p.entries {
		switch e.status {
		case step.StatusNeedsApply:
			summary.NeedsApply++
		case step.StatusSatisfied:
			summary.Satisfied++
		case step.StatusUnknown:
			summary.Unknown++
		}
	}
	return summary
}
