package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/provision/internal/domain/execution"
	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// programObserver forwards executor lifecycle events into the running
// Bubble Tea program.
type programObserver struct {
	program *tea.Program
}

func (o programObserver) StepStarted(id step.ID, index, total int) {
	o.program.Send(StepStartedMsg{ID: id, Index: index, Total: total})
}

func (o programObserver) StepFinished(result execution.StepResult, index, total int) {
	o.program.Send(StepFinishedMsg{Result: result, Index: index, Total: total})
}

// Ensure programObserver implements Observer.
var _ execution.Observer = programObserver{}
