package execution

import (
	"context"
	"time"

	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
)

// Observer receives step lifecycle notifications during a run.
// Implementations drive progress output (console lines or the TUI).
type Observer interface {
	StepStarted(id step.ID, index, total int)
	StepFinished(result StepResult, index, total int)
}

// Executor runs the steps of a sequence strictly in order.
//
// Each step is checked immediately before it is applied, never ahead of
// time: earlier steps routinely install the tools later checks depend on.
// The first failure halts the run and every remaining step is recorded as
// skipped.
type Executor struct {
	dryRun   bool
	force    bool
	observer Observer
}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// WithDryRun returns an Executor that simulates execution without applying.
func (e *Executor) WithDryRun(dryRun bool) *Executor {
	clone := *e
	clone.dryRun = dryRun
	return &clone
}

// WithForce returns an Executor that lets steps replace existing targets.
func (e *Executor) WithForce(force bool) *Executor {
	clone := *e
	clone.force = force
	return &clone
}

// WithObserver returns an Executor that reports step lifecycle events.
func (e *Executor) WithObserver(observer Observer) *Executor {
	clone := *e
	clone.observer = observer
	return &clone
}

// Execute runs all steps in the sequence and returns a Report with one
// result per step. The report's Err is a *StepError identifying the first
// failing step, the context error for an interrupted run, or nil.
func (e *Executor) Execute(ctx context.Context, seq *step.Sequence) *Report {
	steps := seq.Steps()
	total := len(steps)
	results := make([]StepResult, 0, total)

	logger := ports.LoggerFromContext(ctx)
	runCtx := step.NewRunContext(ctx).WithDryRun(e.dryRun).WithForce(e.force)
	start := time.Now()

	for i, s := range steps {
		select {
		case <-ctx.Done():
			logger.Warn(ctx, "run interrupted",
				ports.F("completed", i), ports.F("total", total))
			results = e.skipRemaining(results, steps[i:], i, total)
			return NewReport(results, time.Since(start), ctx.Err())
		default:
		}

		e.notifyStarted(s.ID(), i+1, total)
		logger.Debug(ctx, "step started",
			ports.F("step", s.ID().String()),
			ports.F("index", i+1), ports.F("total", total))

		result := e.executeStep(s, runCtx)
		results = append(results, result)
		e.notifyFinished(result, i+1, total)

		if result.Failed() {
			logger.Error(ctx, "step failed",
				ports.F("step", s.ID().String()),
				ports.F("error", result.Error().Error()))
			results = e.skipRemaining(results, steps[i+1:], i+1, total)
			stepErr := &StepError{Index: i + 1, ID: s.ID(), Err: result.Error()}
			return NewReport(results, time.Since(start), stepErr)
		}

		logger.Info(ctx, "step finished",
			ports.F("step", s.ID().String()),
			ports.F("status", result.Status().String()),
			ports.F("applied", result.Applied()),
			ports.F("duration", result.Duration().String()))
	}

	return NewReport(results, time.Since(start), nil)
}

// executeStep checks and, when needed, applies a single step.
func (e *Executor) executeStep(s step.Step, runCtx step.RunContext) StepResult {
	stepID := s.ID()

	status, checkErr := s.Check(runCtx)
	if checkErr != nil {
		// A failed check is not fatal: apply decides for itself.
		status = step.StatusUnknown
	}

	if status == step.StatusSatisfied {
		return NewStepResult(stepID, step.StatusSatisfied, nil)
	}

	if runCtx.DryRun() {
		if checkErr != nil {
			return NewStepResult(stepID, step.StatusUnknown, checkErr)
		}
		change, err := s.Plan(runCtx)
		if err != nil {
			return NewStepResult(stepID, step.StatusFailed, err)
		}
		return NewStepResult(stepID, status, nil).WithChange(change)
	}

	change, planErr := s.Plan(runCtx)
	if planErr != nil {
		change = step.Change{}
	}

	applyStart := time.Now()
	err := s.Apply(runCtx)
	duration := time.Since(applyStart)

	if err != nil {
		return NewStepResult(stepID, step.StatusFailed, err).WithDuration(duration)
	}

	return NewStepResult(stepID, step.StatusSatisfied, nil).
		WithDuration(duration).
		WithChange(change).
		WithApplied(true)
}

// skipRemaining records skipped results for steps that never ran. from is
// the 0-based index of the first skipped step.
func (e *Executor) skipRemaining(results []StepResult, steps []step.Step, from, total int) []StepResult {
	for j, s := range steps {
		result := NewStepResult(s.ID(), step.StatusSkipped, nil)
		results = append(results, result)
		e.notifyFinished(result, from+j+1, total)
	}
	return results
}

func (e *Executor) notifyStarted(id step.ID, index, total int) {
	if e.observer != nil {
		e.observer.StepStarted(id, index, total)
	}
}

func (e *Executor) notifyFinished(result StepResult, index, total int) {
	if e.observer != nil {
		e.observer.StepFinished(result, index, total)
	}
}
