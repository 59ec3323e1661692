package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/provision/internal/domain/execution"
	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// fakeStep satisfies step.Step for building plan entries in tests.
type fakeStep struct {
	id step.ID
}

func (s fakeStep) ID() step.ID                                  { return s.id }
func (s fakeStep) Check(step.RunContext) (step.Status, error)   { return step.StatusUnknown, nil }
func (s fakeStep) Plan(step.RunContext) (step.Change, error)    { return step.Change{}, nil }
func (s fakeStep) Apply(step.RunContext) error                  { return nil }
func (s fakeStep) Explain(step.ExplainContext) step.Explanation { return step.Explanation{} }

func planStep(id string) fakeStep {
	return fakeStep{id: step.MustNewID(id)}
}

func TestPrintPlan_NoChanges(t *testing.T) {
	plan := execution.NewPlan()
	plan.Add(execution.NewPlanEntry(planStep("packages:install"), step.StatusSatisfied, step.Change{}))

	var buf bytes.Buffer
	p := New(&buf, WithHistory(nil))
	p.PrintPlan(plan)

	output := buf.String()
	if !strings.Contains(output, "Provisioning Plan") {
		t.Errorf("output missing header:\n%s", output)
	}
	if !strings.Contains(output, "No changes needed.") {
		t.Errorf("output missing no-changes line:\n%s", output)
	}
}

func TestPrintPlan_WithChanges(t *testing.T) {
	plan := execution.NewPlan()
	plan.Add(execution.NewPlanEntry(planStep("packages:install"), step.StatusNeedsApply,
		step.NewChange(step.ChangeTypeInstall, "packages", "git ripgrep", "via apt")))
	plan.Add(execution.NewPlanEntry(planStep("shell:env"), step.StatusSatisfied, step.Change{}))

	var buf bytes.Buffer
	p := New(&buf, WithHistory(nil))
	p.PrintPlan(plan)

	output := buf.String()
	for _, want := range []string{
		"Steps: 2 total, 1 to apply, 1 satisfied",
		"+ packages:install",
		"+ packages git ripgrep (via apt)",
		"✓ shell:env",
		"Run 'provision' to execute this plan.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestPrintPlan_UnknownStatus(t *testing.T) {
	plan := execution.NewPlan()
	entry := execution.NewPlanEntry(planStep("tools:install"), step.StatusUnknown, step.Change{}).
		WithCheckError(errors.New("npm: command not found"))
	plan.Add(entry)
	plan.Add(execution.NewPlanEntry(planStep("shell:env"), step.StatusNeedsApply,
		step.NewChange(step.ChangeTypeWrite, "env block", "~/.profile", "1 variable")))

	var buf bytes.Buffer
	p := New(&buf, WithHistory(nil))
	p.PrintPlan(plan)

	output := buf.String()
	if !strings.Contains(output, "? tools:install") {
		t.Errorf("output missing unknown glyph:\n%s", output)
	}
	if !strings.Contains(output, "check failed: npm: command not found") {
		t.Errorf("output missing check error:\n%s", output)
	}
}

func TestPrintReport(t *testing.T) {
	results := []execution.StepResult{
		execution.NewStepResult(step.MustNewID("packages:install"), step.StatusSatisfied, nil).
			WithApplied(true).WithDuration(1234 * time.Millisecond),
		execution.NewStepResult(step.MustNewID("shell:env"), step.StatusSatisfied, nil),
	}
	report := execution.NewReport(results, 2*time.Second, nil)

	var buf bytes.Buffer
	p := New(&buf, WithHistory(nil))
	p.PrintReport(report)

	output := buf.String()
	for _, want := range []string{
		"Provisioning Results",
		"✓ packages:install (applied in 1.23s)",
		"✓ shell:env",
		"Summary: 1 applied, 1 satisfied, 0 failed, 0 skipped",
		"Finished in 2s",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestPrintReport_Failure(t *testing.T) {
	toolsID := step.MustNewID("tools:install")
	results := []execution.StepResult{
		execution.NewStepResult(step.MustNewID("packages:install"), step.StatusSatisfied, nil),
		execution.NewStepResult(toolsID, step.StatusFailed, errors.New("npm exploded")),
		execution.NewStepResult(step.MustNewID("shell:env"), step.StatusSkipped, nil),
	}
	stepErr := &execution.StepError{Index: 2, ID: toolsID, Err: errors.New("npm exploded")}
	report := execution.NewReport(results, time.Second, stepErr)

	var buf bytes.Buffer
	p := New(&buf, WithHistory(nil))
	p.PrintReport(report)

	output := buf.String()
	for _, want := range []string{
		"✗ tools:install: npm exploded",
		"- shell:env (skipped)",
		"Summary: 0 applied, 1 satisfied, 1 failed, 1 skipped",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestTextObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewTextObserver(&buf)

	obs.StepStarted(step.MustNewID("packages:install"), 1, 3)
	obs.StepFinished(execution.NewStepResult(step.MustNewID("packages:install"), step.StatusSatisfied, nil).
		WithApplied(true).WithDuration(2*time.Second), 1, 3)
	obs.StepFinished(execution.NewStepResult(step.MustNewID("tools:install"), step.StatusFailed,
		errors.New("npm exploded")), 2, 3)
	obs.StepFinished(execution.NewStepResult(step.MustNewID("shell:env"), step.StatusSkipped, nil), 3, 3)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"[1/3] packages:install ...",
		"[1/3] ✓ packages:install (2s)",
		"[2/3] ✗ tools:install: npm exploded",
		"[3/3] - shell:env (skipped)",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line[%d] = %q, want %q", i, lines[i], line)
		}
	}
}

func TestTextObserver_SatisfiedWithoutWork(t *testing.T) {
	var buf bytes.Buffer
	obs := NewTextObserver(&buf)

	obs.StepFinished(execution.NewStepResult(step.MustNewID("shell:env"), step.StatusSatisfied, nil), 2, 2)

	if got, want := buf.String(), "[2/2] ✓ shell:env\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{9 * time.Millisecond, "9ms"},
		{1234 * time.Millisecond, "1.23s"},
		{2 * time.Second, "2s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
