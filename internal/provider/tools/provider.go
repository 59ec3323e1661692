// Package tools provisions globally installed npm tools.
package tools

import (
	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
)

// Provider compiles the manifest's global tool list into a single batched
// npm install step.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new global tools provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "tools"
}

// Compile produces one install step covering every requested tool.
func (p *Provider) Compile(ctx step.CompileContext) ([]step.Step, error) {
	specs := dedupeByName(ctx.Manifest().GlobalTools)
	if len(specs) == 0 {
		return nil, nil
	}
	return []step.Step{NewInstallStep(p.runner, specs)}, nil
}

// dedupeByName collapses repeated tool names. The last pin wins but the
// tool keeps its first position, mirroring how target overlays replace
// pins in place.
func dedupeByName(specs []manifest.ToolSpec) []manifest.ToolSpec {
	index := make(map[string]int, len(specs))
	result := make([]manifest.ToolSpec, 0, len(specs))
	for _, spec := range specs {
		if i, ok := index[spec.Name()]; ok {
			result[i] = spec
			continue
		}
		index[spec.Name()] = len(result)
		result = append(result, spec)
	}
	return result
}

// Ensure Provider implements step.Provider.
var _ step.Provider = (*Provider)(nil)
