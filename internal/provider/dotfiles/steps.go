package dotfiles

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
	"github.com/felixgeelhaar/provision/internal/provider/commandutil"
)

// RemoveStep deletes one conflicting file or directory before the clone.
// A missing path is a no-op success.
type RemoveStep struct {
	id   step.ID
	fs   ports.FileSystem
	path string
	full string
}

// NewRemoveStep creates a removal step for one path. The path becomes part
// of the step ID, so it must survive ID validation.
func NewRemoveStep(fs ports.FileSystem, path string) (*RemoveStep, error) {
	id, err := step.NewID("dotfiles:remove:" + path)
	if err != nil {
		return nil, fmt.Errorf("remove_files path %q: %w", path, err)
	}
	return &RemoveStep{
		id:   id,
		fs:   fs,
		path: path,
		full: fs.ExpandPath(path),
	}, nil
}

// ID returns the step identifier.
func (s *RemoveStep) ID() step.ID {
	return s.id
}

// Check reports pending work only while the path still exists.
func (s *RemoveStep) Check(_ step.RunContext) (step.Status, error) {
	if s.fs.Exists(s.full) {
		return step.StatusNeedsApply, nil
	}
	return step.StatusSatisfied, nil
}

// Plan describes the pending removal.
func (s *RemoveStep) Plan(_ step.RunContext) (step.Change, error) {
	return step.NewChange(step.ChangeTypeRemove, "file", s.path, ""), nil
}

// Apply removes the path. Directories are removed recursively.
func (s *RemoveStep) Apply(_ step.RunContext) error {
	if !s.fs.Exists(s.full) {
		return nil
	}
	var err error
	if s.fs.IsDir(s.full) {
		err = s.fs.RemoveAll(s.full)
	} else {
		err = s.fs.Remove(s.full)
	}
	if err != nil {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}
	return nil
}

// Explain describes why this step exists.
func (s *RemoveStep) Explain(_ step.ExplainContext) step.Explanation {
	return step.NewExplanation(
		fmt.Sprintf("Remove %s", s.path),
		"Clears a pre-existing file that would conflict with the dotfiles setup. "+
			"A path that is already gone is left alone.",
		nil,
	)
}

// CloneStep clones the dotfiles repository. An existing clone of the same
// remote is satisfied; anything else occupying the target fails with
// TargetExistsError unless force is set.
type CloneStep struct {
	id     step.ID
	runner ports.CommandRunner
	fs     ports.FileSystem
	url    string
	ref    string
	dir    string
	target string
}

// NewCloneStep creates the clone step from the manifest's dotfiles config.
func NewCloneStep(runner ports.CommandRunner, fs ports.FileSystem, d manifest.Dotfiles) *CloneStep {
	dir := d.TargetDir()
	return &CloneStep{
		id:     step.MustNewID("dotfiles:clone"),
		runner: runner,
		fs:     fs,
		url:    d.URL,
		ref:    d.Ref,
		dir:    dir,
		target: fs.ExpandPath(dir),
	}
}

// ID returns the step identifier.
func (s *CloneStep) ID() step.ID {
	return s.id
}

// Check inspects the target directory. A clone of the requested remote
// counts as satisfied; a missing or foreign directory needs apply.
func (s *CloneStep) Check(ctx step.RunContext) (step.Status, error) {
	if !s.fs.Exists(s.target) {
		return step.StatusNeedsApply, nil
	}
	ours, err := s.pointsAtRemote(ctx)
	if err != nil {
		return step.StatusUnknown, fmt.Errorf("inspecting %s: %w", s.dir, err)
	}
	if ours {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// pointsAtRemote reports whether the target holds a git repository whose
// origin matches the manifest URL.
func (s *CloneStep) pointsAtRemote(ctx step.RunContext) (bool, error) {
	if !s.fs.Exists(filepath.Join(s.target, ".git")) {
		return false, nil
	}
	result, err := s.runner.Run(ctx.Context(), "git", "-C", s.target, "remote", "get-url", "origin")
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, nil
	}
	return strings.TrimSpace(result.Stdout) == s.url, nil
}

// Plan describes the pending clone.
func (s *CloneStep) Plan(_ step.RunContext) (step.Change, error) {
	return step.NewChange(step.ChangeTypeClone, "repository", s.dir, "from "+s.url), nil
}

// Apply clones the repository. With force set, an occupied target is
// cleared first; without it the step fails with TargetExistsError.
func (s *CloneStep) Apply(ctx step.RunContext) error {
	if s.fs.Exists(s.target) {
		// Never clear a healthy clone of the right remote.
		if ours, err := s.pointsAtRemote(ctx); err == nil && ours {
			return nil
		}
		if !ctx.Force() {
			return &TargetExistsError{Path: s.dir}
		}
		if err := s.fs.RemoveAll(s.target); err != nil {
			return fmt.Errorf("clearing %s: %w", s.dir, err)
		}
	}

	args := s.cloneArgs()
	result, err := s.runner.Run(ctx.Context(), "git", args...)
	if err != nil {
		return fmt.Errorf("running %s: %w", commandutil.Line("git", args...), err)
	}
	if !result.Success() {
		return commandutil.NewRunError("git", args, result)
	}
	return nil
}

func (s *CloneStep) cloneArgs() []string {
	args := []string{"clone"}
	if s.ref != "" {
		args = append(args, "--branch", s.ref)
	}
	return append(args, s.url, s.target)
}

// Explain describes why this step exists.
func (s *CloneStep) Explain(_ step.ExplainContext) step.Explanation {
	detail := fmt.Sprintf("Clones %s into %s.", s.url, s.dir)
	if s.ref != "" {
		detail = fmt.Sprintf("Clones %s (ref %s) into %s.", s.url, s.ref, s.dir)
	}
	return step.NewExplanation("Clone the dotfiles repository", detail, nil)
}

// SetupStep runs the repository's own setup script from inside the clone.
// The script is treated as a black box that manages its own idempotence,
// so the step always reports pending work.
type SetupStep struct {
	id     step.ID
	runner ports.CommandRunner
	fs     ports.FileSystem
	dir    string
	target string
	script string
}

// NewSetupStep creates the setup script step.
func NewSetupStep(runner ports.CommandRunner, fs ports.FileSystem, d manifest.Dotfiles) *SetupStep {
	dir := d.TargetDir()
	return &SetupStep{
		id:     step.MustNewID("dotfiles:setup"),
		runner: runner,
		fs:     fs,
		dir:    dir,
		target: fs.ExpandPath(dir),
		script: d.SetupScript,
	}
}

// ID returns the step identifier.
func (s *SetupStep) ID() step.ID {
	return s.id
}

// Check always reports pending work; re-run safety is the script's job.
func (s *SetupStep) Check(_ step.RunContext) (step.Status, error) {
	return step.StatusNeedsApply, nil
}

// Plan describes the pending script run.
func (s *SetupStep) Plan(_ step.RunContext) (step.Change, error) {
	return step.NewChange(step.ChangeTypeRun, "script", s.script, "in "+s.dir), nil
}

// Apply executes the setup script with the clone as working directory.
func (s *SetupStep) Apply(ctx step.RunContext) error {
	scriptPath := filepath.Join(s.target, s.script)
	if !s.fs.Exists(scriptPath) {
		return fmt.Errorf("setup script %s not found in %s", s.script, s.dir)
	}

	command := "./" + s.script
	result, err := s.runner.RunIn(ctx.Context(), s.target, command)
	if err != nil {
		return fmt.Errorf("running %s in %s: %w", command, s.dir, err)
	}
	if !result.Success() {
		return commandutil.NewRunError(command, nil, result)
	}
	return nil
}

// Explain describes why this step exists.
func (s *SetupStep) Explain(_ step.ExplainContext) step.Explanation {
	return step.NewExplanation(
		fmt.Sprintf("Run %s from the dotfiles clone", s.script),
		fmt.Sprintf("Executes %s with %s as working directory. The script runs "+
			"on every provision and is expected to be safe to re-run.", s.script, s.dir),
		nil,
	)
}

// Interface checks.
var (
	_ step.Step = (*RemoveStep)(nil)
	_ step.Step = (*CloneStep)(nil)
	_ step.Step = (*SetupStep)(nil)
)
