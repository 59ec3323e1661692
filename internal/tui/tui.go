package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/provision/internal/domain/execution"
)

// ProgressOptions configures the run progress display.
type ProgressOptions struct {
	ShowDetails bool
}

// NewProgressOptions creates default progress options.
func NewProgressOptions() ProgressOptions {
	return ProgressOptions{ShowDetails: true}
}

// RunFunc performs the provisioning run, reporting progress through the
// observer. It must return even when ctx is cancelled.
type RunFunc func(ctx context.Context, observer execution.Observer) *execution.Report

// RunProgress drives a run under the live progress display. Ctrl+C cancels
// the run's context; the display stays up until the run has recorded the
// remaining steps as skipped, then the final report is returned.
func RunProgress(ctx context.Context, total int, run RunFunc, opts ProgressOptions) (*execution.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newRunModel(total, cancel, opts)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	reports := make(chan *execution.Report, 1)
	go func() {
		report := run(runCtx, programObserver{program: program})
		reports <- report
		program.Send(RunDoneMsg{Report: report})
	}()

	if _, err := program.Run(); err != nil {
		// The display failed; stop the run and wait for its report so no
		// step is abandoned mid-apply.
		cancel()
		report := <-reports
		return report, fmt.Errorf("progress display: %w", err)
	}

	return <-reports, nil
}
