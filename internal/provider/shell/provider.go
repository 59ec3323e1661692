// Package shell provisions the shell environment: the manifest's env vars
// are exported through a managed block in the user's profile file.
package shell

import (
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
)

// Provider compiles the manifest's env map into one profile update step.
type Provider struct {
	fs ports.FileSystem
}

// NewProvider creates a new shell environment provider.
func NewProvider(fs ports.FileSystem) *Provider {
	return &Provider{fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "shell"
}

// Compile produces the env block step when the manifest exports variables.
func (p *Provider) Compile(ctx step.CompileContext) ([]step.Step, error) {
	m := ctx.Manifest()
	if len(m.Env) == 0 {
		return nil, nil
	}
	return []step.Step{NewEnvStep(p.fs, m.EffectiveEnvFile(), m.Env)}, nil
}

// Ensure Provider implements step.Provider.
var _ step.Provider = (*Provider)(nil)
