// Package dotfiles provisions the dotfiles repository: it clears
// conflicting files, clones the repository, and runs its setup script.
package dotfiles

import (
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
)

// Provider compiles the manifest's dotfiles configuration into remove,
// clone, and setup steps, in that order.
type Provider struct {
	runner ports.CommandRunner
	fs     ports.FileSystem
}

// NewProvider creates a new dotfiles provider.
func NewProvider(runner ports.CommandRunner, fs ports.FileSystem) *Provider {
	return &Provider{runner: runner, fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "dotfiles"
}

// Compile produces one remove step per conflicting file, then the clone
// step, then the setup step. Removals come first so the clone and the
// setup script find a clean slate.
func (p *Provider) Compile(ctx step.CompileContext) ([]step.Step, error) {
	m := ctx.Manifest()

	var steps []step.Step
	for _, path := range dedupe(m.RemoveFiles) {
		removeStep, err := NewRemoveStep(p.fs, path)
		if err != nil {
			return nil, err
		}
		steps = append(steps, removeStep)
	}

	if m.Dotfiles.URL != "" {
		steps = append(steps, NewCloneStep(p.runner, p.fs, m.Dotfiles))
		if m.Dotfiles.SetupScript != "" {
			steps = append(steps, NewSetupStep(p.runner, p.fs, m.Dotfiles))
		}
	}
	return steps, nil
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
