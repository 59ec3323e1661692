package execution

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/provision/internal/domain/step"
)

func TestStepError_Error(t *testing.T) {
	err := &StepError{
		Index: 3,
		ID:    step.MustNewID("dotfiles:clone"),
		Err:   errors.New("target exists"),
	}

	want := "step 3 (dotfiles:clone) failed: target exists"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStepError_Unwrap(t *testing.T) {
	cause := errors.New("target exists")
	err := &StepError{Index: 1, ID: step.MustNewID("dotfiles:clone"), Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestStepError_ExitCode(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  int
	}{
		{name: "first step", index: 1, want: 1},
		{name: "middle step", index: 7, want: 7},
		{name: "last representable step", index: 255, want: 255},
		{name: "beyond exit code range", index: 300, want: 255},
		{name: "zero index", index: 0, want: 1},
		{name: "negative index", index: -4, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &StepError{Index: tt.index, ID: step.MustNewID("packages:install")}
			if got := err.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReport_FailedResult(t *testing.T) {
	id1 := step.MustNewID("packages:install")
	id2 := step.MustNewID("tools:install")
	failErr := errors.New("npm install failed")

	results := []StepResult{
		NewStepResult(id1, step.StatusSatisfied, nil),
		NewStepResult(id2, step.StatusFailed, failErr),
	}
	report := NewReport(results, time.Second, &StepError{Index: 2, ID: id2, Err: failErr})

	failed, ok := report.FailedResult()
	if !ok {
		t.Fatal("FailedResult() should find the failed step")
	}
	if !failed.StepID().Equals(id2) {
		t.Errorf("failed step = %v, want %v", failed.StepID(), id2)
	}
}

func TestReport_FailedResult_NoneFailed(t *testing.T) {
	id := step.MustNewID("packages:install")
	report := NewReport([]StepResult{NewStepResult(id, step.StatusSatisfied, nil)},
		time.Second, nil)

	if _, ok := report.FailedResult(); ok {
		t.Error("FailedResult() should report no failure")
	}
	if !report.Success() {
		t.Error("report without error should be successful")
	}
}

func TestReport_ResultsReturnsCopy(t *testing.T) {
	id := step.MustNewID("packages:install")
	report := NewReport([]StepResult{NewStepResult(id, step.StatusSatisfied, nil)},
		time.Second, nil)

	results := report.Results()
	results[0] = NewStepResult(step.MustNewID("shell:env"), step.StatusFailed, nil)

	if !report.Results()[0].StepID().Equals(id) {
		t.Error("mutating the returned slice should not affect the report")
	}
}
