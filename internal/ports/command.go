// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
	Dir     string
}

// CommandRunner executes shell commands.
//
// Run executes in the process working directory; RunIn executes with dir as
// the working directory, which setup scripts rely on to resolve relative
// paths inside a cloned repository.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
	RunIn(ctx context.Context, dir string, command string, args ...string) (CommandResult, error)
}
