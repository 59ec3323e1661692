package execution

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// Planner generates a Plan from a step sequence by checking each step's
// current status and collecting the changes that would be applied.
//
// A failing check does not abort planning: the step is recorded with an
// unknown status so the plan still shows the full run. Checks often depend
// on tools an earlier step installs, so unknown at plan time is normal.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan checks every step in the sequence and returns the resulting Plan.
// Steps keep their sequence order.
func (p *Planner) Plan(ctx context.Context, seq *step.Sequence) (*Plan, error) {
	plan := NewPlan()
	runCtx := step.NewRunContext(ctx).WithDryRun(true)

	for _, s := range seq.Steps() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entry, err := p.planStep(s, runCtx)
		if err != nil {
			return nil, fmt.Errorf("planning step %q: %w", s.ID().String(), err)
		}
		plan.Add(entry)
	}

	return plan, nil
}

// planStep checks a single step and generates a PlanEntry.
func (p *Planner) planStep(s step.Step, ctx step.RunContext) (PlanEntry, error) {
	status, err := s.Check(ctx)
	if err != nil {
		return NewPlanEntry(s, step.StatusUnknown, step.Change{}).WithCheckError(err), nil
	}

	var change step.Change
	if status.NeedsAction() {
		change, err = s.Plan(ctx)
		if err != nil {
			return PlanEntry{}, fmt.Errorf("plan failed: %w", err)
		}
	}

	return NewPlanEntry(s, status, change), nil
}
