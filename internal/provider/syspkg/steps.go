package syspkg

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/provision/internal/domain/platform"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
	"github.com/felixgeelhaar/provision/internal/provider/commandutil"
)

// InstallStep installs all requested OS packages in one package manager
// invocation. Already-installed packages are a no-op: the check skips the
// whole step when everything is present, and the manager itself skips
// individual packages otherwise.
type InstallStep struct {
	id       step.ID
	runner   ports.CommandRunner
	manager  platform.PackageManager
	packages []string
	sudo     bool
}

// NewInstallStep creates the batched install step.
func NewInstallStep(runner ports.CommandRunner, manager platform.PackageManager, packages []string, sudo bool) *InstallStep {
	return &InstallStep{
		id:       step.MustNewID("packages:install"),
		runner:   runner,
		manager:  manager,
		packages: packages,
		sudo:     sudo,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() step.ID {
	return s.id
}

// Check queries the package database for each package. Any missing package
// marks the whole batch as pending.
func (s *InstallStep) Check(ctx step.RunContext) (step.Status, error) {
	for _, pkg := range s.packages {
		installed, err := s.installed(ctx, pkg)
		if err != nil {
			return step.StatusUnknown, err
		}
		if !installed {
			return step.StatusNeedsApply, nil
		}
	}
	return step.StatusSatisfied, nil
}

func (s *InstallStep) installed(ctx step.RunContext, pkg string) (bool, error) {
	var (
		command string
		args    []string
	)
	switch s.manager {
	case platform.ManagerApt:
		command, args = "dpkg-query", []string{"-W", "-f=${db:Status-Status}", pkg}
	case platform.ManagerApk:
		command, args = "apk", []string{"info", "-e", pkg}
	case platform.ManagerDnf:
		command, args = "rpm", []string{"-q", pkg}
	case platform.ManagerBrew:
		command, args = "brew", []string{"list", "--versions", pkg}
	default:
		return false, fmt.Errorf("unsupported package manager %q", s.manager)
	}

	result, err := s.runner.Run(ctx.Context(), command, args...)
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", pkg, err)
	}
	if s.manager == platform.ManagerApt {
		// dpkg knows removed-but-not-purged packages; only an installed
		// status counts.
		return result.Success() && strings.Contains(result.Stdout, "installed"), nil
	}
	return result.Success(), nil
}

// Plan describes the pending batch install.
func (s *InstallStep) Plan(_ step.RunContext) (step.Change, error) {
	return step.NewChange(step.ChangeTypeInstall, "packages",
		strings.Join(s.packages, " "), "via "+s.manager.String()), nil
}

// Apply installs every package in one invocation.
func (s *InstallStep) Apply(ctx step.RunContext) error {
	if len(s.packages) == 0 {
		return nil
	}

	command, args, err := s.installCommand()
	if err != nil {
		return err
	}
	result, err := s.runner.Run(ctx.Context(), command, args...)
	if err != nil {
		return fmt.Errorf("running %s: %w", commandutil.Line(command, args...), err)
	}
	if !result.Success() {
		return commandutil.NewRunError(command, args, result)
	}
	return nil
}

func (s *InstallStep) installCommand() (string, []string, error) {
	var (
		command string
		args    []string
	)
	switch s.manager {
	case platform.ManagerApt:
		command, args = "apt-get", []string{"install", "-y"}
	case platform.ManagerApk:
		command, args = "apk", []string{"add"}
	case platform.ManagerDnf:
		command, args = "dnf", []string{"install", "-y"}
	case platform.ManagerBrew:
		// brew refuses to run as root, so never wrap it in sudo.
		return "brew", append([]string{"install"}, s.packages...), nil
	default:
		return "", nil, fmt.Errorf("unsupported package manager %q", s.manager)
	}

	args = append(args, s.packages...)
	if s.sudo {
		return "sudo", append([]string{command}, args...), nil
	}
	return command, args, nil
}

// Explain describes why this step exists.
func (s *InstallStep) Explain(_ step.ExplainContext) step.Explanation {
	return step.NewExplanation(
		fmt.Sprintf("Install %d OS packages with %s", len(s.packages), s.manager),
		fmt.Sprintf("Installs %s in a single %s invocation. Packages that are "+
			"already present are left untouched by the package manager.",
			strings.Join(s.packages, ", "), s.manager),
		nil,
	)
}

// Ensure InstallStep implements step.Step.
var _ step.Step = (*InstallStep)(nil)
