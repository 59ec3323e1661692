package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Progress displays a progress bar with an optional message.
type Progress struct {
	percent float64
	current int
	total   int
	message string
	width   int
	styles  Styles
}

// NewProgress creates a new progress component.
func NewProgress() Progress {
	return Progress{
		width:  40,
		styles: DefaultStyles(),
	}
}

// Percent returns the current percentage (0.0 to 1.0).
func (p Progress) Percent() float64 {
	return p.percent
}

// Current returns the current item number.
func (p Progress) Current() int {
	return p.current
}

// Total returns the total number of items.
func (p Progress) Total() int {
	return p.total
}

// SetPercent sets the progress percentage.
func (p Progress) SetPercent(percent float64) Progress {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	p.percent = percent
	return p
}

// SetCurrent sets the current item number and updates percent.
func (p Progress) SetCurrent(current int) Progress {
	if current < 0 {
		current = 0
	}
	if current > p.total && p.total > 0 {
		current = p.total
	}
	p.current = current
	if p.total > 0 {
		p.percent = float64(current) / float64(p.total)
	}
	return p
}

// SetTotal sets the total number of items.
func (p Progress) SetTotal(total int) Progress {
	if total < 0 {
		total = 0
	}
	p.total = total
	if p.total > 0 && p.current > 0 {
		p.percent = float64(p.current) / float64(p.total)
	}
	return p
}

// SetMessage sets the status message.
func (p Progress) SetMessage(message string) Progress {
	p.message = message
	return p
}

// WithWidth sets the progress bar width.
func (p Progress) WithWidth(width int) Progress {
	p.width = width
	return p
}

// View renders the progress bar.
func (p Progress) View() string {
	var b strings.Builder

	barWidth := p.width - 2 // account for brackets
	filled := int(p.percent * float64(barWidth))
	empty := barWidth - filled

	bar := fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", empty),
	)
	b.WriteString(p.styles.ProgressBar.Render(bar))

	fmt.Fprintf(&b, " %3.0f%%", p.percent*100)

	if p.message != "" {
		b.WriteString("\n")
		b.WriteString(p.styles.Help.Render(p.message))
	}

	return b.String()
}

// Spinner displays an animated spinner with an optional message.
type Spinner struct {
	spinner spinner.Model
	message string
}

// NewSpinner creates a new spinner component.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Spinner{spinner: s}
}

// Message returns the current message.
func (s Spinner) Message() string {
	return s.message
}

// SetMessage sets the spinner message.
func (s Spinner) SetMessage(message string) Spinner {
	s.message = message
	return s
}

// Init returns the initial command for the spinner animation.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update handles spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if s.message != "" {
		return fmt.Sprintf("%s %s", s.spinner.View(), s.message)
	}
	return s.spinner.View()
}
