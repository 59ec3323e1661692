package shell

import (
	"fmt"

	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
)

// EnvStep maintains a managed export block in the profile file. Content
// outside the markers is never touched, so users keep their own profile
// customizations.
type EnvStep struct {
	id   step.ID
	fs   ports.FileSystem
	file string
	full string
	env  map[string]string
}

// NewEnvStep creates the env block step.
func NewEnvStep(fs ports.FileSystem, file string, env map[string]string) *EnvStep {
	return &EnvStep{
		id:   step.MustNewID("shell:env"),
		fs:   fs,
		file: file,
		full: fs.ExpandPath(file),
		env:  env,
	}
}

// ID returns the step identifier.
func (s *EnvStep) ID() step.ID {
	return s.id
}

// Check compares the managed block in the profile against the wanted
// export lines.
func (s *EnvStep) Check(_ step.RunContext) (step.Status, error) {
	content, err := s.readProfile()
	if err != nil {
		return step.StatusUnknown, err
	}
	if ReadManagedBlock(content, envSection) == renderEnvBlock(s.env) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

func (s *EnvStep) readProfile() (string, error) {
	if !s.fs.Exists(s.full) {
		return "", nil
	}
	data, err := s.fs.ReadFile(s.full)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.file, err)
	}
	return string(data), nil
}

// Plan describes the pending profile update.
func (s *EnvStep) Plan(_ step.RunContext) (step.Change, error) {
	detail := fmt.Sprintf("%d variables", len(s.env))
	if len(s.env) == 1 {
		detail = "1 variable"
	}
	return step.NewChange(step.ChangeTypeWrite, "env block", s.file, detail), nil
}

// Apply rewrites the managed block, creating the profile if needed.
func (s *EnvStep) Apply(_ step.RunContext) error {
	content, err := s.readProfile()
	if err != nil {
		return err
	}

	updated := WriteManagedBlock(content, envSection, renderEnvBlock(s.env))
	if err := s.fs.WriteFile(s.full, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.file, err)
	}
	return nil
}

// Explain describes why this step exists.
func (s *EnvStep) Explain(_ step.ExplainContext) step.Explanation {
	return step.NewExplanation(
		fmt.Sprintf("Export %d environment variables via %s", len(s.env), s.file),
		"Maintains a managed export block between provision markers. "+
			"Everything outside the markers is preserved as-is.",
		nil,
	)
}

// Ensure EnvStep implements step.Step.
var _ step.Step = (*EnvStep)(nil)
