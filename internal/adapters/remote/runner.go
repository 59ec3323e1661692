package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/provision/internal/ports"
)

// Runner executes provisioning commands on a remote host.
type Runner struct {
	client *Client
}

// NewRunner creates a CommandRunner that executes over the SSH client.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Run executes a command in the remote user's default directory.
func (r *Runner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	return r.client.run(ctx, commandLine(command, args), nil)
}

// RunIn executes a command with dir as its working directory.
func (r *Runner) RunIn(ctx context.Context, dir string, command string, args ...string) (ports.CommandResult, error) {
	line := fmt.Sprintf("cd %s && %s", shellQuote(dir), commandLine(command, args))
	return r.client.run(ctx, line, nil)
}

// commandLine renders an argv as a single line for the remote shell.
// Arguments are quoted so paths with spaces survive; the command word is
// left bare so PATH lookup works as usual.
func commandLine(command string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Ensure Runner implements CommandRunner.
var _ ports.CommandRunner = (*Runner)(nil)
