package execution

import "time"

// ReportSummary aggregates result counts for a run.
type ReportSummary struct {
	Total     int
	Applied   int
	Satisfied int
	Failed    int
	Skipped   int
	Unknown   int
}

// Report is the outcome of a run: one result per step plus the error that
// stopped the run, if any.
type Report struct {
	results  []StepResult
	duration time.Duration
	err      error
}

// NewReport creates a Report from step results.
// err is the *StepError that halted the run, the context error for an
// interrupted run, or nil on success.
func NewReport(results []StepResult, duration time.Duration, err error) *Report {
	return &Report{
		results:  results,
		duration: duration,
		err:      err,
	}
}

// Results returns one result per step, in execution order.
func (r *Report) Results() []StepResult {
	results := make([]StepResult, len(r.results))
	copy(results, r.results)
	return results
}

// Duration returns the total run duration.
func (r *Report) Duration() time.Duration {
	return r.duration
}

// Err returns the error that halted the run, or nil.
func (r *Report) Err() error {
	return r.err
}

// Success returns true if every step ended in its desired state.
func (r *Report) Success() bool {
	return r.err == nil
}

// FailedResult returns the result of the step that failed, if any.
func (r *Report) FailedResult() (StepResult, bool) {
	for _, result := range r.results {
		if result.Failed() {
			return result, true
		}
	}
	return StepResult{}, false
}

// Summary returns aggregate result counts.
func (r *Report) Summary() ReportSummary {
	summary := ReportSummary{Total: len(r.results)}
	for _, result := range r.results {
		switch {
		case result.Failed():
			summary.Failed++
		case result.Skipped():
			summary.Skipped++
		case result.Success() && result.Applied():
			summary.Applied++
		case result.Success():
			summary.Satisfied++
		default:
			summary.Unknown++
		}
	}
	return summary
}
