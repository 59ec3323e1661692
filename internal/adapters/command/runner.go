// Package command provides a CommandRunner backed by os/exec.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/provision/internal/ports"
)

// RealRunner executes commands on the local machine.
type RealRunner struct{}

// NewRealRunner creates a command runner backed by os/exec.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes a command in the process working directory.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	return r.run(ctx, "", command, args)
}

// RunIn executes a command with dir as its working directory.
func (r *RealRunner) RunIn(ctx context.Context, dir string, command string, args ...string) (ports.CommandResult, error) {
	return r.run(ctx, dir, command, args)
}

func (r *RealRunner) run(ctx context.Context, dir, command string, args []string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	cmd.Env = nonInteractiveEnv()

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// A non-zero exit is a command result, not a runner failure.
			// Callers decide what the exit code means.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// nonInteractiveEnv is the environment every child process runs with.
// Provisioning is headless: a git credential prompt or a debconf question
// must fail immediately instead of blocking the run on input that will
// never arrive.
func nonInteractiveEnv() []string {
	return append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"DEBIAN_FRONTEND=noninteractive",
	)
}

// Ensure RealRunner implements CommandRunner.
var _ ports.CommandRunner = (*RealRunner)(nil)
