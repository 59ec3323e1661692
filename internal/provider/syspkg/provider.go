// Package syspkg provisions OS-level packages through the platform's
// package manager (apt, apk, dnf, or brew).
package syspkg

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/provision/internal/domain/platform"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
)

// Provider compiles the manifest's package list into a single batched
// install step.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new OS package provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "packages"
}

// Compile produces one install step covering every requested package.
// Packages are installed in a single package manager invocation to avoid
// repeated dependency resolution and network round-trips.
func (p *Provider) Compile(ctx step.CompileContext) ([]step.Step, error) {
	m := ctx.Manifest()
	packages := dedupe(m.Packages)
	if len(packages) == 0 {
		return nil, nil
	}

	manager, err := resolveManager(ctx)
	if err != nil {
		return nil, err
	}

	return []step.Step{NewInstallStep(p.runner, manager, packages, needsSudo())}, nil
}

// resolveManager picks the package manager: an explicit manifest override
// wins, otherwise the detected platform decides.
func resolveManager(ctx step.CompileContext) (platform.PackageManager, error) {
	if name := ctx.Manifest().PackageManager; name != "" {
		manager, ok := platform.ParseManager(name)
		if !ok {
			return platform.ManagerUnknown, fmt.Errorf(
				"unsupported package manager %q (supported: %s)",
				name, strings.Join(platform.ManagerNames(), ", "))
		}
		return manager, nil
	}

	if plat := ctx.Platform(); plat != nil && plat.Manager() != platform.ManagerUnknown {
		return plat.Manager(), nil
	}

	return platform.ManagerUnknown, fmt.Errorf(
		"no supported package manager found on this system (supported: %s); "+
			"set package_manager in the manifest to override detection",
		strings.Join(platform.ManagerNames(), ", "))
}

// needsSudo reports whether package installs must be wrapped in sudo.
// Root (the common case inside containers) talks to the manager directly.
func needsSudo() bool {
	return os.Geteuid() != 0
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}

// Ensure Provider implements step.Provider.
var _ step.Provider = (*Provider)(nil)
