package app

import (
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/provision/internal/domain/execution"
	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// PrintPlan outputs a human-readable plan summary.
func (p *Provisioner) PrintPlan(plan *execution.Plan) {
	summary := plan.Summary()

	p.printf("\nProvisioning Plan\n")
	p.printf("=================\n\n")

	if !plan.HasChanges() {
		p.printf("No changes needed. The machine already matches the manifest.\n")
		return
	}

	p.printf("Steps: %d total, %d to apply, %d satisfied",
		summary.Total, summary.NeedsApply, summary.Satisfied)
	if summary.Unknown > 0 {
		p.printf(", %d unknown", summary.Unknown)
	}
	p.printf("\n\n")

	for _, entry := range plan.Entries() {
		glyph := "✓"
		switch entry.Status() {
		case step.StatusNeedsApply:
			glyph = "+"
		case step.StatusUnknown:
			glyph = "?"
		}

		p.printf("  %s %s\n", glyph, entry.Step().ID().String())

		if change := entry.Change(); !change.IsEmpty() {
			p.printf("      %s\n", change.Summary())
		}
		if err := entry.CheckError(); err != nil {
			p.printf("      check failed: %v\n", err)
		}
	}

	p.printf("\nRun 'provision' to execute this plan.\n")
}

// PrintReport outputs execution results.
func (p *Provisioner) PrintReport(report *execution.Report) {
	p.printf("\nProvisioning Results\n")
	p.printf("====================\n\n")

	for _, result := range report.Results() {
		id := result.StepID().String()
		switch {
		case result.Failed():
			p.printf("  ✗ %s: %v\n", id, result.Error())
		case result.Skipped():
			p.printf("  - %s (skipped)\n", id)
		case result.Success() && result.Applied():
			p.printf("  ✓ %s (applied in %s)\n", id, formatDuration(result.Duration()))
		case result.Success():
			p.printf("  ✓ %s\n", id)
		case result.Status() == step.StatusNeedsApply:
			p.printf("  + %s (needs apply)\n", id)
		default:
			p.printf("  ? %s (unknown)\n", id)
		}
	}

	summary := report.Summary()
	p.printf("\nSummary: %d applied, %d satisfied, %d failed, %d skipped\n",
		summary.Applied, summary.Satisfied, summary.Failed, summary.Skipped)
	p.printf("Finished in %s\n", formatDuration(report.Duration()))
}

// printf is a helper that writes to the output writer, ignoring errors.
func (p *Provisioner) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// textObserver streams one line per step lifecycle event. It is the
// progress surface for non-interactive runs, where the TUI cannot draw.
type textObserver struct {
	out io.Writer
}

// NewTextObserver creates an observer that prints plain progress lines.
func NewTextObserver(out io.Writer) execution.Observer {
	return &textObserver{out: out}
}

func (o *textObserver) StepStarted(id step.ID, index, total int) {
	_, _ = fmt.Fprintf(o.out, "[%d/%d] %s ...\n", index, total, id.String())
}

func (o *textObserver) StepFinished(result execution.StepResult, index, total int) {
	id := result.StepID().String()
	switch {
	case result.Failed():
		_, _ = fmt.Fprintf(o.out, "[%d/%d] ✗ %s: %v\n", index, total, id, result.Error())
	case result.Skipped():
		_, _ = fmt.Fprintf(o.out, "[%d/%d] - %s (skipped)\n", index, total, id)
	case result.Applied():
		_, _ = fmt.Fprintf(o.out, "[%d/%d] ✓ %s (%s)\n", index, total, id, formatDuration(result.Duration()))
	default:
		_, _ = fmt.Fprintf(o.out, "[%d/%d] ✓ %s\n", index, total, id)
	}
}

// formatDuration rounds to a readable precision. Durations under the
// rounding unit keep their exact value instead of collapsing to "0s".
func formatDuration(d time.Duration) string {
	if d < 10*time.Millisecond {
		return d.String()
	}
	return d.Round(10 * time.Millisecond).String()
}
