package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/provision/internal/domain/manifest"
	"github.com/felixgeelhaar/provision/internal/domain/step"
	"github.com/felixgeelhaar/provision/internal/ports"
	"github.com/felixgeelhaar/provision/internal/provider/commandutil"
)

// InstallStep installs all requested global tools in one npm invocation.
//
// The check depends on npm being present, which an earlier packages step
// may only just have installed. A failing check therefore surfaces as
// unknown rather than as a hard error.
type InstallStep struct {
	id     step.ID
	runner ports.CommandRunner
	tools  []manifest.ToolSpec
}

// NewInstallStep creates the batched tool install step.
func NewInstallStep(runner ports.CommandRunner, tools []manifest.ToolSpec) *InstallStep {
	return &InstallStep{
		id:     step.MustNewID("tools:install"),
		runner: runner,
		tools:  tools,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() step.ID {
	return s.id
}

// Check lists globally installed npm packages and compares versions
// against the requested pins.
func (s *InstallStep) Check(ctx step.RunContext) (step.Status, error) {
	installed, err := s.installedVersions(ctx)
	if err != nil {
		return step.StatusUnknown, err
	}

	for _, tool := range s.tools {
		version, ok := installed[tool.Name()]
		if !ok {
			return step.StatusNeedsApply, nil
		}
		if !pinSatisfied(tool.Version(), version) {
			return step.StatusNeedsApply, nil
		}
	}
	return step.StatusSatisfied, nil
}

func (s *InstallStep) installedVersions(ctx step.RunContext) (map[string]string, error) {
	result, err := s.runner.Run(ctx.Context(), "npm", "list", "-g", "--depth=0", "--json")
	if err != nil {
		return nil, fmt.Errorf("listing global npm packages: %w", err)
	}

	// npm exits non-zero for peer dependency problems but still prints
	// the tree, so parse whatever came back.
	var listing struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if unmarshalErr := json.Unmarshal([]byte(result.Stdout), &listing); unmarshalErr != nil {
		return nil, fmt.Errorf("parsing npm list output: %w", unmarshalErr)
	}

	versions := make(map[string]string, len(listing.Dependencies))
	for name, info := range listing.Dependencies {
		versions[name] = info.Version
	}
	return versions, nil
}

// pinSatisfied reports whether an installed version fulfils a pin.
// A partial pin like "10.24" accepts any matching patch release; "latest"
// and empty pins accept whatever is installed.
func pinSatisfied(pin, installed string) bool {
	if pin == "" || pin == manifest.LatestVersion {
		return true
	}

	vPin := "v" + strings.TrimPrefix(pin, "v")
	vInstalled := "v" + strings.TrimPrefix(installed, "v")
	if !semver.IsValid(vPin) || !semver.IsValid(vInstalled) {
		return pin == installed
	}

	switch strings.Count(vPin, ".") {
	case 0:
		return semver.Major(vInstalled) == vPin
	case 1:
		return semver.MajorMinor(vInstalled) == vPin
	default:
		return semver.Compare(vPin, vInstalled) == 0
	}
}

// Plan describes the pending batch install.
func (s *InstallStep) Plan(_ step.RunContext) (step.Change, error) {
	return step.NewChange(step.ChangeTypeInstall, "tools",
		strings.Join(s.specStrings(), " "), "via npm"), nil
}

// Apply installs every tool in one npm invocation, honoring version pins.
func (s *InstallStep) Apply(ctx step.RunContext) error {
	if len(s.tools) == 0 {
		return nil
	}

	args := append([]string{"install", "-g"}, s.specStrings()...)
	result, err := s.runner.Run(ctx.Context(), "npm", args...)
	if err != nil {
		return fmt.Errorf("running %s: %w", commandutil.Line("npm", args...), err)
	}
	if !result.Success() {
		return commandutil.NewRunError("npm", args, result)
	}
	return nil
}

func (s *InstallStep) specStrings() []string {
	specs := make([]string, len(s.tools))
	for i, tool := range s.tools {
		specs[i] = tool.String()
	}
	return specs
}

// Explain describes why this step exists.
func (s *InstallStep) Explain(_ step.ExplainContext) step.Explanation {
	return step.NewExplanation(
		fmt.Sprintf("Install %d global npm tools", len(s.tools)),
		fmt.Sprintf("Installs %s globally in a single npm invocation. Pinned "+
			"versions are reinstalled when the installed version drifts.",
			strings.Join(s.specStrings(), ", ")),
		nil,
	)
}

// Ensure InstallStep implements step.Step.
var _ step.Step = (*InstallStep)(nil)
