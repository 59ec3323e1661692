// Package remote provisions machines over SSH. It provides a CommandRunner
// and a FileSystem that execute against a remote host, so the same steps
// that configure the local machine can configure a fresh box over the wire.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/felixgeelhaar/provision/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Config describes how to reach a remote host.
type Config struct {
	User         string
	Host         string
	Port         int
	IdentityFile string
	Timeout      time.Duration
}

// Address returns the host:port dial address.
func (c Config) Address() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// ParseTarget parses a target of the form user@host[:port].
func ParseTarget(target string) (Config, error) {
	user, rest, ok := strings.Cut(target, "@")
	if !ok || user == "" {
		return Config{}, fmt.Errorf("invalid target %q: expected user@host[:port]", target)
	}

	cfg := Config{User: user, Port: 22}

	host, portPart, hasPort := strings.Cut(rest, ":")
	if host == "" {
		return Config{}, fmt.Errorf("invalid target %q: missing host", target)
	}
	cfg.Host = host

	if hasPort {
		port, err := strconv.Atoi(portPart)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid target %q: bad port %q", target, portPart)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Client is an SSH connection to a provisioning target.
type Client struct {
	client *ssh.Client
}

// Dial connects to the host described by cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	auth, err := authMethods(cfg.IdentityFile)
	if err != nil {
		return nil, err
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // fresh targets have no known_hosts entry yet
		Timeout:         timeout,
	}

	addr := cfg.Address()
	dialer := &net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, sshCfg)
	if err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	return &Client{client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// authMethods assembles SSH authentication. An explicit identity file wins;
// otherwise the default key files and the SSH agent are tried.
func authMethods(identityFile string) ([]ssh.AuthMethod, error) {
	if identityFile != "" {
		signer, err := loadPrivateKey(identityFile)
		if err != nil {
			return nil, fmt.Errorf("loading identity file %s: %w", identityFile, err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	var methods []ssh.AuthMethod

	home, _ := os.UserHomeDir()
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		signer, err := loadPrivateKey(filepath.Join(home, ".ssh", name))
		if err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if agentMethod := agentAuth(); agentMethod != nil {
		methods = append(methods, agentMethod)
	}

	if len(methods) == 0 {
		return nil, errors.New("no SSH authentication available: pass --identity or start an ssh-agent")
	}

	return methods, nil
}

func loadPrivateKey(path string) (ssh.Signer, error) {
	key, err := os.ReadFile(ports.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(key)
}

// agentAuth returns agent-backed authentication when SSH_AUTH_SOCK points
// at a live agent. The agent socket stays open for the life of the process.
func agentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers)
}

// run executes one command line in a fresh session.
func (c *Client) run(ctx context.Context, commandLine string, stdin io.Reader) (ports.CommandResult, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return ports.CommandResult{}, fmt.Errorf("opening session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr strings.Builder
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(commandLine)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return ports.CommandResult{}, ctx.Err()
	case err := <-done:
		result := ports.CommandResult{
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				// Mirror the local runner: a non-zero exit is a result.
				result.ExitCode = exitErr.ExitStatus()
				return result, nil
			}
			return result, err
		}
		return result, nil
	}
}
