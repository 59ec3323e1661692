package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/provision/internal/adapters/logging"
	"github.com/felixgeelhaar/provision/internal/adapters/remote"
	"github.com/felixgeelhaar/provision/internal/app"
	"github.com/felixgeelhaar/provision/internal/domain/execution"
	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/ports"
	"github.com/felixgeelhaar/provision/internal/tui"
)

// exitManifest is the exit code for manifest problems. A failed run exits
// with the failing step's 1-based index instead.
const exitManifest = 254

var (
	// Global flags
	verbose bool
	logJSON bool

	// Root command flags
	manifestPath string
	targetName   string
	forceFlag    bool
	dryRun       bool
	hostFlag     string
	identityFile string
	plainOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "provision",
	Short: "Bootstrap a development environment from a manifest",
	Long: `Provision reads a declarative manifest and brings a machine to the state
it describes: OS packages, global npm tools, a dotfiles repository with its
setup script, and exported environment variables.

Steps run strictly in order and stop at the first failure. Every step is
idempotent, so rerunning after a fix picks up where the run broke off.

Phases:
  1. packages  - install OS packages in one package manager call
  2. tools     - install global npm tools in one npm call
  3. dotfiles  - remove conflicting files, clone the repository, run setup
  4. shell     - export environment variables via a managed profile block

Exit codes:
  0    - every step succeeded (or nothing to do)
  N    - step N failed (1-based, capped at 255)
  254  - the manifest could not be loaded or validated

Examples:
  provision --manifest dev.yaml
  provision --manifest dev.yaml --target work --force
  provision --manifest dev.yaml --host admin@build-1 --identity ~/.ssh/ci`,
	Args:          cobra.NoArgs,
	RunE:          runProvision,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")

	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "provision.yaml", "Path to the manifest")
	rootCmd.Flags().StringVarP(&targetName, "target", "t", "", "Manifest target to provision")
	rootCmd.Flags().BoolVar(&forceFlag, "force", false, "Replace an occupied dotfiles directory")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without applying")
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "Provision a remote host over SSH (user@host[:port])")
	rootCmd.Flags().StringVarP(&identityFile, "identity", "i", "", "SSH identity file for --host")
	rootCmd.Flags().BoolVar(&plainOutput, "plain", false, "Plain line output instead of the live display")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

func runProvision(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ports.ContextWithLogger(ctx, newLogger())

	options, cleanup, err := connectTarget(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p := app.New(os.Stdout, options...)

	m, err := p.Load(manifestPath, targetName)
	if err != nil {
		return err
	}
	seq, err := p.Compile(ctx, m)
	if err != nil {
		return err
	}

	opts := app.ApplyOptions{
		DryRun: dryRun,
		Force:  forceFlag,
		Target: targetName,
		Host:   hostFlag,
	}

	var report *execution.Report
	if useLiveDisplay() {
		report, err = tui.RunProgress(ctx, seq.Len(),
			func(runCtx context.Context, observer execution.Observer) *execution.Report {
				runOpts := opts
				runOpts.Observer = observer
				return p.Apply(runCtx, seq, runOpts)
			}, tui.NewProgressOptions())
		if err != nil {
			return err
		}
	} else {
		opts.Observer = app.NewTextObserver(os.Stdout)
		report = p.Apply(ctx, seq, opts)
		p.PrintReport(report)
	}

	return report.Err()
}

// connectTarget dials the remote host when one is configured and returns
// the matching application options. The cleanup closes the connection.
func connectTarget(ctx context.Context) ([]app.Option, func(), error) {
	if hostFlag == "" {
		return nil, func() {}, nil
	}

	cfg, err := remote.ParseTarget(hostFlag)
	if err != nil {
		return nil, nil, err
	}
	cfg.IdentityFile = identityFile

	client, err := remote.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", hostFlag, err)
	}

	options := []app.Option{
		app.WithRunner(remote.NewRunner(client)),
		app.WithFileSystem(remote.NewFileSystem(client)),
	}
	return options, func() { _ = client.Close() }, nil
}

// useLiveDisplay reports whether the run should render the live progress
// display. Dry runs and piped output fall back to plain lines.
func useLiveDisplay() bool {
	if plainOutput || dryRun {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newLogger builds the console logger the run's context carries.
func newLogger() ports.Logger {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithLevel(level),
		logging.WithJSONFormat(logJSON),
	)
}

// exitCode maps an error to the process exit code: the failing step's
// index for run failures, exitManifest for manifest problems, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var stepErr *execution.StepError
	if errors.As(err, &stepErr) {
		return stepErr.ExitCode()
	}
	var userErr *manifest.UserError
	if errors.As(err, &userErr) {
		return exitManifest
	}
	var list *manifest.ErrorList
	if errors.As(err, &list) {
		return exitManifest
	}
	return 1
}

// formatError returns a user-friendly error message.
// With verbose=true it also shows the underlying technical error.
func formatError(err error) string {
	var list *manifest.ErrorList
	if errors.As(err, &list) {
		return list.Format()
	}
	var userErr *manifest.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Format()
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n  Underlying: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for root flags.
func registerFlagCompletions() {
	// Complete --manifest with manifest files
	_ = rootCmd.RegisterFlagCompletionFunc("manifest", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	// Complete --target with the targets the manifest defines
	_ = rootCmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		m, err := manifest.NewLoader().Load(manifestPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return m.TargetNames(), cobra.ShellCompDirectiveNoFileComp
	})
}
