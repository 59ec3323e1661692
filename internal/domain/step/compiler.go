package step

import (
	"fmt"
)

// Compiler orchestrates providers to build a Sequence from a manifest.
// Providers are compiled in registration order, which fixes the phase order
// of the resulting sequence.
type Compiler struct {
	providers []Provider
}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{
		providers: make([]Provider, 0),
	}
}

// RegisterProvider adds a provider to the compiler.
func (c *Compiler) RegisterProvider(provider Provider) {
	c.providers = append(c.providers, provider)
}

// Providers returns all registered providers.
func (c *Compiler) Providers() []Provider {
	return c.providers
}

// Compile transforms a manifest into a validated Sequence.
// It calls each provider's Compile method and aggregates the results.
// Returns an error if any provider fails or duplicate step IDs are emitted.
func (c *Compiler) Compile(ctx CompileContext) (*Sequence, error) {
	seq := NewSequence()

	for _, provider := range c.providers {
		steps, err := provider.Compile(ctx)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", provider.Name(), err)
		}

		for _, s := range steps {
			if err := seq.Add(s); err != nil {
				return nil, fmt.Errorf("provider %q, step %q: %w",
					provider.Name(), s.ID().String(), err)
			}
		}
	}

	return seq, nil
}
