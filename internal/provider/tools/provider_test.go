package tools

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/testutil/mocks"
)

func TestProvider_Name(t *testing.T) {
	provider := NewProvider(nil)
	if got := provider.Name(); got != "tools" {
		t.Errorf("Name() = %q, want %q", got, "tools")
	}
}

func TestProvider_Compile_Empty(t *testing.T) {
	provider := NewProvider(mocks.NewCommandRunner())

	steps, err := provider.Compile(step.NewCompileContext(&manifest.Manifest{}))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("Compile() len = %d, want 0", len(steps))
	}
}

func TestProvider_Compile_SingleBatchedStep(t *testing.T) {
	provider := NewProvider(mocks.NewCommandRunner())

	m := &manifest.Manifest{
		GlobalTools: []manifest.ToolSpec{
			manifest.MustParseToolSpec("typescript"),
			manifest.MustParseToolSpec("pnpm@10.24.0"),
			manifest.MustParseToolSpec("@angular/cli@17.1.0"),
		},
	}
	steps, err := provider.Compile(step.NewCompileContext(m))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("Compile() len = %d, want 1: installs are batched", len(steps))
	}
	if steps[0].ID().String() != "tools:install" {
		t.Errorf("ID() = %q, want %q", steps[0].ID().String(), "tools:install")
	}
}

func TestProvider_Compile_DeduplicatesByName(t *testing.T) {
	provider := NewProvider(mocks.NewCommandRunner())

	m := &manifest.Manifest{
		GlobalTools: []manifest.ToolSpec{
			manifest.MustParseToolSpec("pnpm@10.24.0"),
			manifest.MustParseToolSpec("typescript"),
			manifest.MustParseToolSpec("pnpm@10.25.1"),
		},
	}
	steps, err := provider.Compile(step.NewCompileContext(m))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	change, err := steps[0].Plan(step.NewRunContext(context.Background()))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	// Last pin wins, first position kept.
	if change.Name() != "pnpm@10.25.1 typescript" {
		t.Errorf("planned tools = %q, want %q", change.Name(), "pnpm@10.25.1 typescript")
	}
}
