package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// configurableStep is a test double with overridable behavior.
type configurableStep struct {
	id      step.ID
	checkFn func(step.RunContext) (step.Status, error)
	planFn  func(step.RunContext) (step.Change, error)
	applyFn func(step.RunContext) error
}

func newConfigurableStep(id string) *configurableStep {
	return &configurableStep{
		id: step.MustNewID(id),
		checkFn: func(step.RunContext) (step.Status, error) {
			return step.StatusNeedsApply, nil
		},
		planFn: func(step.RunContext) (step.Change, error) {
			return step.NewChange(step.ChangeTypeInstall, "package", "git", ""), nil
		},
		applyFn: func(step.RunContext) error {
			return nil
		},
	}
}

func (s *configurableStep) ID() step.ID                               { return s.id }
func (s *configurableStep) Check(ctx step.RunContext) (step.Status, error) { return s.checkFn(ctx) }
func (s *configurableStep) Plan(ctx step.RunContext) (step.Change, error)  { return s.planFn(ctx) }
func (s *configurableStep) Apply(ctx step.RunContext) error                { return s.applyFn(ctx) }
func (s *configurableStep) Explain(step.ExplainContext) step.Explanation {
	return step.NewExplanation("Test step", "", nil)
}

func buildSequence(t *testing.T, steps ...step.Step) *step.Sequence {
	t.Helper()
	seq := step.NewSequence()
	for _, s := range steps {
		if err := seq.Add(s); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	return seq
}

// recordingObserver captures lifecycle notifications.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) StepStarted(id step.ID, index, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("start %d/%d %s", index, total, id.String()))
}

func (o *recordingObserver) StepFinished(result StepResult, index, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events,
		fmt.Sprintf("finish %d/%d %s %s", index, total, result.StepID().String(), result.Status()))
}

func (o *recordingObserver) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	events := make([]string, len(o.events))
	copy(events, o.events)
	return events
}

func TestExecutor_EmptySequence(t *testing.T) {
	report := NewExecutor().Execute(context.Background(), step.NewSequence())

	if !report.Success() {
		t.Errorf("empty run should succeed, got err %v", report.Err())
	}
	if len(report.Results()) != 0 {
		t.Errorf("results len = %d, want 0", len(report.Results()))
	}
}

func TestExecutor_SingleStep_Apply(t *testing.T) {
	applied := false
	s := newConfigurableStep("packages:install")
	s.applyFn = func(step.RunContext) error {
		applied = true
		return nil
	}

	report := NewExecutor().Execute(context.Background(), buildSequence(t, s))

	if !applied {
		t.Error("step was not applied")
	}
	if !report.Success() {
		t.Fatalf("Execute() err = %v", report.Err())
	}

	results := report.Results()
	if len(results) != 1 {
		t.Fatalf("results len = %d, want 1", len(results))
	}
	if !results[0].Success() || !results[0].Applied() {
		t.Errorf("result Success()=%v Applied()=%v, want true/true",
			results[0].Success(), results[0].Applied())
	}
}

func TestExecutor_SatisfiedStep_NotApplied(t *testing.T) {
	applied := false
	s := newConfigurableStep("packages:install")
	s.checkFn = func(step.RunContext) (step.Status, error) {
		return step.StatusSatisfied, nil
	}
	s.applyFn = func(step.RunContext) error {
		applied = true
		return nil
	}

	report := NewExecutor().Execute(context.Background(), buildSequence(t, s))

	if applied {
		t.Error("satisfied step should not be applied")
	}
	results := report.Results()
	if !results[0].Success() {
		t.Error("satisfied step should report success")
	}
	if results[0].Applied() {
		t.Error("satisfied step should not report work done")
	}
}

func TestExecutor_ChecksRunInStepOrder(t *testing.T) {
	// Later checks must observe the effects of earlier applies, so checks
	// may not run ahead of time.
	var order []string

	first := newConfigurableStep("packages:install")
	first.applyFn = func(step.RunContext) error {
		order = append(order, "apply packages")
		return nil
	}
	second := newConfigurableStep("tools:install")
	second.checkFn = func(step.RunContext) (step.Status, error) {
		order = append(order, "check tools")
		return step.StatusNeedsApply, nil
	}
	second.applyFn = func(step.RunContext) error {
		order = append(order, "apply tools")
		return nil
	}

	report := NewExecutor().Execute(context.Background(), buildSequence(t, first, second))

	if !report.Success() {
		t.Fatalf("Execute() err = %v", report.Err())
	}
	want := []string{"apply packages", "check tools", "apply tools"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestExecutor_FailFast(t *testing.T) {
	first := newConfigurableStep("packages:install")

	second := newConfigurableStep("tools:install")
	second.applyFn = func(step.RunContext) error {
		return errors.New("npm install failed")
	}

	thirdApplied := false
	third := newConfigurableStep("dotfiles:clone")
	third.applyFn = func(step.RunContext) error {
		thirdApplied = true
		return nil
	}

	report := NewExecutor().Execute(context.Background(),
		buildSequence(t, first, second, third))

	if thirdApplied {
		t.Error("steps after a failure must not run")
	}
	if report.Success() {
		t.Fatal("report should not be successful")
	}

	results := report.Results()
	if len(results) != 3 {
		t.Fatalf("results len = %d, want 3", len(results))
	}
	if !results[0].Success() {
		t.Error("first step should succeed")
	}
	if !results[1].Failed() {
		t.Error("second step should fail")
	}
	if !results[2].Skipped() {
		t.Error("third step should be skipped")
	}

	var stepErr *StepError
	if !errors.As(report.Err(), &stepErr) {
		t.Fatalf("report err = %v, want *StepError", report.Err())
	}
	if stepErr.Index != 2 {
		t.Errorf("StepError.Index = %d, want 2", stepErr.Index)
	}
	if stepErr.ID.String() != "tools:install" {
		t.Errorf("StepError.ID = %q, want %q", stepErr.ID.String(), "tools:install")
	}
}

func TestExecutor_CheckError_ApplyStillRuns(t *testing.T) {
	applied := false
	s := newConfigurableStep("tools:install")
	s.checkFn = func(step.RunContext) (step.Status, error) {
		return step.StatusUnknown, errors.New("npm not found")
	}
	s.applyFn = func(step.RunContext) error {
		applied = true
		return nil
	}

	report := NewExecutor().Execute(context.Background(), buildSequence(t, s))

	if !applied {
		t.Error("apply should run when the check errors")
	}
	if !report.Success() {
		t.Errorf("Execute() err = %v", report.Err())
	}
}

func TestExecutor_DryRun_NeverApplies(t *testing.T) {
	applied := false
	s := newConfigurableStep("packages:install")
	s.applyFn = func(step.RunContext) error {
		applied = true
		return nil
	}

	report := NewExecutor().WithDryRun(true).
		Execute(context.Background(), buildSequence(t, s))

	if applied {
		t.Error("dry run must not apply")
	}
	results := report.Results()
	if results[0].Status() != step.StatusNeedsApply {
		t.Errorf("status = %v, want %v", results[0].Status(), step.StatusNeedsApply)
	}
	if results[0].Change().IsEmpty() {
		t.Error("dry-run result should carry the planned change")
	}
}

func TestExecutor_DryRun_CheckError_ReportsUnknown(t *testing.T) {
	checkErr := errors.New("npm not found")
	s := newConfigurableStep("tools:install")
	s.checkFn = func(step.RunContext) (step.Status, error) {
		return step.StatusUnknown, checkErr
	}

	report := NewExecutor().WithDryRun(true).
		Execute(context.Background(), buildSequence(t, s))

	results := report.Results()
	if results[0].Status() != step.StatusUnknown {
		t.Errorf("status = %v, want %v", results[0].Status(), step.StatusUnknown)
	}
	if !errors.Is(results[0].Error(), checkErr) {
		t.Errorf("result error = %v, want %v", results[0].Error(), checkErr)
	}
}

func TestExecutor_ForceFlagReachesSteps(t *testing.T) {
	var sawForce bool
	s := newConfigurableStep("dotfiles:clone")
	s.applyFn = func(ctx step.RunContext) error {
		sawForce = ctx.Force()
		return nil
	}

	NewExecutor().WithForce(true).
		Execute(context.Background(), buildSequence(t, s))

	if !sawForce {
		t.Error("force flag should reach the step's RunContext")
	}
}

func TestExecutor_ContextCancelled_SkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newConfigurableStep("packages:install")
	applied := false
	s.applyFn = func(step.RunContext) error {
		applied = true
		return nil
	}

	report := NewExecutor().Execute(ctx, buildSequence(t, s))

	if applied {
		t.Error("no step should run after cancellation")
	}
	if report.Success() {
		t.Fatal("cancelled run should not be successful")
	}
	if !errors.Is(report.Err(), context.Canceled) {
		t.Errorf("report err = %v, want context.Canceled", report.Err())
	}

	results := report.Results()
	if len(results) != 1 || !results[0].Skipped() {
		t.Errorf("remaining steps should be recorded as skipped, got %+v", results)
	}
}

func TestExecutor_ObserverSeesLifecycle(t *testing.T) {
	first := newConfigurableStep("packages:install")
	second := newConfigurableStep("tools:install")
	second.applyFn = func(step.RunContext) error {
		return errors.New("boom")
	}
	third := newConfigurableStep("shell:env")

	observer := &recordingObserver{}
	NewExecutor().WithObserver(observer).
		Execute(context.Background(), buildSequence(t, first, second, third))

	want := []string{
		"start 1/3 packages:install",
		"finish 1/3 packages:install satisfied",
		"start 2/3 tools:install",
		"finish 2/3 tools:install failed",
		"finish 3/3 shell:env skipped",
	}
	events := observer.Events()
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestExecutor_ReportSummaryCounts(t *testing.T) {
	satisfied := newConfigurableStep("packages:install")
	satisfied.checkFn = func(step.RunContext) (step.Status, error) {
		return step.StatusSatisfied, nil
	}
	applied := newConfigurableStep("tools:install")
	failing := newConfigurableStep("dotfiles:clone")
	failing.applyFn = func(step.RunContext) error {
		return errors.New("clone failed")
	}
	skipped := newConfigurableStep("shell:env")

	report := NewExecutor().Execute(context.Background(),
		buildSequence(t, satisfied, applied, failing, skipped))

	summary := report.Summary()
	if summary.Total != 4 {
		t.Errorf("Total = %d, want 4", summary.Total)
	}
	if summary.Satisfied != 1 {
		t.Errorf("Satisfied = %d, want 1", summary.Satisfied)
	}
	if summary.Applied != 1 {
		t.Errorf("Applied = %d, want 1", summary.Applied)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
}
