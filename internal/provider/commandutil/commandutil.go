// Package commandutil provides shared subprocess helpers for providers.
package commandutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/provision/internal/ports"
)

// RunError describes a subprocess that exited non-zero. It preserves the
// command line attempted and the captured stderr so failures can be
// reported verbatim.
type RunError struct {
	Command  string
	ExitCode int
	Stderr   string
}

// NewRunError builds a RunError from a command invocation and its result.
func NewRunError(command string, args []string, result ports.CommandResult) *RunError {
	return &RunError{
		Command:  Line(command, args...),
		ExitCode: result.ExitCode,
		Stderr:   strings.TrimRight(result.Stderr, "\n"),
	}
}

func (e *RunError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("`%s` exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("`%s` exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// Line renders a command and its arguments as a single printable line.
func Line(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// IsCommandNotFound reports whether an error indicates a missing executable.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return true
	}
	return false
}
