package step

import (
	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/domain/platform"
)

// Provider compiles one concern of the manifest into executable steps.
// Each provider handles a specific resource family (OS packages, global
// tools, dotfiles, shell environment).
type Provider interface {
	// Name returns the provider's identifier (e.g., "packages", "dotfiles").
	Name() string

	// Compile transforms manifest data into an ordered list of steps.
	Compile(ctx CompileContext) ([]Step, error)
}

// CompileContext provides manifest data and platform metadata to providers
// during compilation.
type CompileContext struct {
	manifest *manifest.Manifest
	platform *platform.Platform
}

// NewCompileContext creates a new CompileContext for the given manifest.
func NewCompileContext(m *manifest.Manifest) CompileContext {
	return CompileContext{
		manifest: m,
	}
}

// Manifest returns the manifest being compiled.
func (c CompileContext) Manifest() *manifest.Manifest {
	return c.manifest
}

// Platform returns the detected platform, or nil if none was set.
func (c CompileContext) Platform() *platform.Platform {
	return c.platform
}

// WithPlatform returns a new CompileContext with the platform set.
func (c CompileContext) WithPlatform(p *platform.Platform) CompileContext {
	newCtx := c
	newCtx.platform = p
	return newCtx
}
