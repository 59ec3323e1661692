package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/provision/internal/domain/execution"
	"github.com/felixgeelhaar/provision/internal/domain/step"
)

// durationPrecision keeps step timings readable in the step list.
const durationPrecision = 10 * time.Millisecond

// StepStartedMsg is sent when a step starts executing.
type StepStartedMsg struct {
	ID    step.ID
	Index int
	Total int
}

// StepFinishedMsg is sent when a step finishes, including skipped steps.
type StepFinishedMsg struct {
	Result execution.StepResult
	Index  int
	Total  int
}

// RunDoneMsg is sent when the whole run has finished.
type RunDoneMsg struct {
	Report *execution.Report
}

// runModel is the Bubble Tea model for run progress.
type runModel struct {
	total     int
	options   ProgressOptions
	bar       Progress
	spin      Spinner
	styles    Styles
	width     int
	finished  int
	failed    int
	current   step.ID
	running   bool
	results   []execution.StepResult
	report    *execution.Report
	done      bool
	cancelled bool
	cancel    context.CancelFunc
}

// newRunModel creates a run progress model. cancel stops the underlying run
// when the user interrupts the display.
func newRunModel(total int, cancel context.CancelFunc, opts ProgressOptions) runModel {
	return runModel{
		total:   total,
		options: opts,
		bar:     NewProgress().WithWidth(40).SetTotal(total),
		spin:    NewSpinner(),
		styles:  DefaultStyles(),
		width:   80,
		cancel:  cancel,
	}
}

// Init initializes the model.
func (m runModel) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.spin.Init())
}

// Update handles messages.
func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC && !m.cancelled {
			// Cancel the run but keep the display up: the executor still
			// records the remaining steps as skipped before RunDoneMsg.
			m.cancelled = true
			m.cancel()
		}
		return m, nil

	case StepStartedMsg:
		m.current = msg.ID
		m.running = true
		return m, nil

	case StepFinishedMsg:
		m.results = append(m.results, msg.Result)
		m.finished++
		if msg.Result.Failed() {
			m.failed++
		}
		m.running = false
		return m, nil

	case RunDoneMsg:
		m.report = msg.Report
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	return m, cmd
}

// View renders the model.
func (m runModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Provisioning"))
	b.WriteString("\n\n")

	if m.total == 0 {
		b.WriteString(m.styles.Help.Render("Nothing to provision. The manifest has no steps."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.bar.SetCurrent(m.finished).View())
	b.WriteString("\n\n")

	statusLine := fmt.Sprintf("%d/%d steps", m.finished, m.total)
	if m.failed > 0 {
		statusLine += fmt.Sprintf(" (%d failed)", m.failed)
	}
	b.WriteString(m.styles.Help.Render(statusLine))
	b.WriteString("\n\n")

	if m.running && !m.done {
		line := fmt.Sprintf("%s: %s", kindHeading(m.current), m.current.String())
		b.WriteString(m.spin.SetMessage(line).View())
		b.WriteString("\n\n")
	}

	if m.options.ShowDetails && len(m.results) > 0 {
		b.WriteString(m.styles.Subtitle.Render("Steps"))
		b.WriteString("\n")

		// Show the most recent results so the list fits a small terminal.
		start := 0
		if len(m.results) > 6 {
			start = len(m.results) - 6
		}
		for _, result := range m.results[start:] {
			b.WriteString(fmt.Sprintf("  %s %s", m.statusGlyph(result), result.StepID().String()))
			if result.Applied() && result.Duration() > 0 {
				b.WriteString(m.styles.Help.Render(fmt.Sprintf(" (%s)", result.Duration().Round(durationPrecision))))
			}
			b.WriteString("\n")
		}
	}

	if m.cancelled && !m.done {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render("Interrupt received, stopping..."))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		if m.failed == 0 && !m.cancelled {
			b.WriteString(m.styles.Success.Render("All steps completed."))
		} else if m.cancelled {
			b.WriteString(m.styles.Warning.Render("Run cancelled."))
		} else {
			b.WriteString(m.styles.Error.Render(fmt.Sprintf("Run failed after %d of %d steps.", m.finished-m.failed, m.total)))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("Ctrl+C to cancel"))
	}

	return b.String()
}

func (m runModel) statusGlyph(result execution.StepResult) string {
	switch result.Status() {
	case step.StatusSatisfied:
		return m.styles.Success.Render("✓")
	case step.StatusFailed:
		return m.styles.Error.Render("✗")
	case step.StatusSkipped:
		return m.styles.Help.Render("-")
	case step.StatusNeedsApply, step.StatusUnknown:
		return m.styles.Warning.Render("?")
	}
	return "?"
}

// titleCaser turns step provider names into headings ("packages" → "Packages").
var titleCaser = cases.Title(language.English)

func kindHeading(id step.ID) string {
	return titleCaser.String(id.Provider())
}
