// Package app provides the main application logic for provision.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/provision/internal/adapters/command"
	"github.com/felixgeelhaar/provision/internal/adapters/filesystem"
	"github.com/felixgeelhaar/provision/internal/adapters/history"
	"github.com/felixgeelhaar/provision/internal/domain/execution"
	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/domain/platform"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
	"github.com/felixgeelhaar/provision/internal/provider/dotfiles"
	"github.com/felixgeelhaar/provision/internal/provider/shell"
	"github.com/felixgeelhaar/provision/internal/provider/syspkg"
	"github.com/felixgeelhaar/provision/internal/provider/tools"
)

// Provisioner is the main application orchestrator. It wires the adapters
// and providers together and exposes the plan, apply, and validate
// operations the CLI is built on.
type Provisioner struct {
	compiler  *step.Compiler
	planner   *execution.Planner
	executor  *execution.Executor
	loader    *manifest.Loader
	validator *manifest.Validator
	runner    ports.CommandRunner
	fs        ports.FileSystem
	history   *history.Store
	out       io.Writer
}

// Option configures the Provisioner.
type Option func(*Provisioner)

// WithRunner replaces the command runner, e.g. with an SSH-backed one.
func WithRunner(runner ports.CommandRunner) Option {
	return func(p *Provisioner) {
		p.runner = runner
	}
}

// WithFileSystem replaces the file system, e.g. with an SSH-backed one.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(p *Provisioner) {
		p.fs = fs
	}
}

// WithHistory replaces the run history store. Pass nil to disable history.
func WithHistory(store *history.Store) Option {
	return func(p *Provisioner) {
		p.history = store
	}
}

// New creates a Provisioner writing human output to out.
func New(out io.Writer, opts ...Option) *Provisioner {
	p := &Provisioner{
		planner:   execution.NewPlanner(),
		executor:  execution.NewExecutor(),
		loader:    manifest.NewLoader(),
		validator: manifest.NewValidator(),
		runner:    command.NewRealRunner(),
		fs:        filesystem.NewRealFileSystem(),
		out:       out,
	}

	if path, err := history.DefaultPath(); err == nil {
		p.history = history.NewStore(path)
	}

	for _, opt := range opts {
		opt(p)
	}

	// Registration order is the phase order of every run: packages first
	// so npm exists for tools, dotfiles before shell so the setup script
	// sees its own files, env block last.
	p.compiler = step.NewCompiler()
	p.compiler.RegisterProvider(syspkg.NewProvider(p.runner))
	p.compiler.RegisterProvider(tools.NewProvider(p.runner))
	p.compiler.RegisterProvider(dotfiles.NewProvider(p.runner, p.fs))
	p.compiler.RegisterProvider(shell.NewProvider(p.fs))

	return p
}

// History returns the run history store, or nil when history is disabled.
func (p *Provisioner) History() *history.Store {
	return p.history
}

// Load reads the manifest, resolves the target overlay when one is named,
// and validates the result.
func (p *Provisioner) Load(manifestPath, target string) (*manifest.Manifest, error) {
	m, err := p.loader.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	if target != "" {
		m, err = m.ResolveTarget(target)
		if err != nil {
			return nil, err
		}
	}

	if err := p.validator.Validate(m).AsError(); err != nil {
		return nil, err
	}

	return m, nil
}

// Compile turns a loaded manifest into the ordered step sequence.
func (p *Provisioner) Compile(ctx context.Context, m *manifest.Manifest) (*step.Sequence, error) {
	compileCtx := step.NewCompileContext(m)

	plat, err := platform.Detect()
	if err != nil {
		// Detection failure only matters when the manifest does not name a
		// package manager; the packages provider reports that case itself.
		ports.LoggerFromContext(ctx).Debug(ctx, "platform detection failed",
			ports.F("error", err.Error()))
	} else {
		compileCtx = compileCtx.WithPlatform(plat)
	}

	return p.compiler.Compile(compileCtx)
}

// Plan loads the manifest and checks every step without applying anything.
func (p *Provisioner) Plan(ctx context.Context, manifestPath, target string) (*execution.Plan, error) {
	m, err := p.Load(manifestPath, target)
	if err != nil {
		return nil, err
	}

	seq, err := p.Compile(ctx, m)
	if err != nil {
		return nil, err
	}

	return p.planner.Plan(ctx, seq)
}

// ApplyOptions configures a provisioning run.
type ApplyOptions struct {
	// DryRun simulates the run without applying changes.
	DryRun bool
	// Force lets steps replace occupied targets (dotfiles clone).
	Force bool
	// Observer receives step lifecycle events for progress display.
	Observer execution.Observer
	// Target is the manifest target name, recorded in history.
	Target string
	// Host is the remote target (user@host), empty for local runs.
	Host string
}

// Apply executes a compiled sequence and records the run in history.
func (p *Provisioner) Apply(ctx context.Context, seq *step.Sequence, opts ApplyOptions) *execution.Report {
	executor := p.executor.WithDryRun(opts.DryRun).WithForce(opts.Force)
	if opts.Observer != nil {
		executor = executor.WithObserver(opts.Observer)
	}

	startedAt := time.Now()
	report := executor.Execute(ctx, seq)

	if p.history != nil && !opts.DryRun {
		record := history.NewRecord(opts.Target, opts.Host, startedAt, report)
		if err := p.history.Append(ctx, record); err != nil {
			// A failed history write never fails the run itself.
			ports.LoggerFromContext(ctx).Warn(ctx, "recording run history failed",
				ports.F("error", err.Error()))
		}
	}

	return report
}

// Run loads, compiles, and applies the manifest in one call.
func (p *Provisioner) Run(ctx context.Context, manifestPath string, opts ApplyOptions) (*execution.Report, error) {
	m, err := p.Load(manifestPath, opts.Target)
	if err != nil {
		return nil, err
	}

	seq, err := p.Compile(ctx, m)
	if err != nil {
		return nil, err
	}

	return p.Apply(ctx, seq, opts), nil
}

// ValidationResult aggregates validation output for display.
type ValidationResult struct {
	Errors   []string
	Warnings []string
	Info     []string
}

// Valid returns true when validation produced no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateOptions configures validation behavior.
type ValidateOptions struct {
	// CheckRemote also verifies that the dotfiles URL answers git ls-remote.
	CheckRemote bool
}

// Validate checks the manifest without making changes. Structural problems
// are returned inside the result; only failures to read the manifest at
// all are returned as errors.
func (p *Provisioner) Validate(ctx context.Context, manifestPath, target string, opts ValidateOptions) (*ValidationResult, error) {
	result := &ValidationResult{}

	m, err := p.loader.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	result.Info = append(result.Info, fmt.Sprintf("Loaded manifest from %s", manifestPath))

	if target != "" {
		m, err = m.ResolveTarget(target)
		if err != nil {
			return nil, err
		}
		result.Info = append(result.Info, "Target: "+target)
	}

	if list := p.validator.Validate(m); list.HasErrors() {
		for _, userErr := range list.Errors() {
			result.Errors = append(result.Errors, userErr.Format())
		}
		return result, nil
	}

	seq, err := p.Compile(ctx, m)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}
	result.Info = append(result.Info, fmt.Sprintf("Compiled %d steps", seq.Len()))

	if opts.CheckRemote && m.HasDotfiles() {
		if err := p.checkRemote(ctx, m.Dotfiles.URL); err != nil {
			var userErr *manifest.UserError
			if errors.As(err, &userErr) {
				result.Errors = append(result.Errors, userErr.Format())
			} else {
				result.Errors = append(result.Errors, err.Error())
			}
		} else {
			result.Info = append(result.Info, "Dotfiles remote is reachable")
		}
	}

	return result, nil
}

// checkRemote verifies the dotfiles repository answers without cloning it.
func (p *Provisioner) checkRemote(ctx context.Context, url string) error {
	result, err := p.runner.Run(ctx, "git", "ls-remote", "--exit-code", url, "HEAD")
	if err != nil {
		return manifest.NewDotfilesUnreachableError(url, err)
	}
	if !result.Success() {
		return manifest.NewDotfilesUnreachableError(url,
			errors.New(strings.TrimSpace(result.Stderr)))
	}
	return nil
}
