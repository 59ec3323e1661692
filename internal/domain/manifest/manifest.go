// Package manifest defines the provisioning manifest, its loading and
// validation, and the overlay semantics for named targets.
package manifest

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the manifest leaves a field empty. Paths stay in
// their ~-relative form until a step resolves them, so parsing never touches
// the environment.
const (
	// DefaultDotfilesDir is the clone destination when dotfiles_dir is unset.
	DefaultDotfilesDir = "~/dotfiles"
	// DefaultEnvFile is the profile file receiving the managed env block.
	DefaultEnvFile = "~/.profile"
)

// Dotfiles describes the dotfiles repository to install.
type Dotfiles struct {
	// URL is the git remote to clone. Empty means no dotfiles phase.
	URL string
	// Ref is the branch or tag to clone. Empty uses the remote default.
	Ref string
	// Dir is the clone destination. Empty means DefaultDotfilesDir.
	Dir string
	// SetupScript is a path relative to the clone that is executed after
	// cloning. Empty means no setup phase.
	SetupScript string
}

// TargetDir returns the clone destination, applying the default.
func (d Dotfiles) TargetDir() string {
	if d.Dir == "" {
		return DefaultDotfilesDir
	}
	return d.Dir
}

// Manifest is the root description of an environment: which packages and
// tools to install, which conflicting files to clear, which dotfiles
// repository to set up, and which variables to export.
type Manifest struct {
	// PackageManager overrides package manager detection (apt, apk, dnf, brew).
	PackageManager string
	// Packages are OS packages, installed in one batched call.
	Packages []string
	// GlobalTools are npm packages installed globally, in one batched call.
	GlobalTools []ToolSpec
	// Dotfiles configures the dotfiles clone and setup script.
	Dotfiles Dotfiles
	// RemoveFiles are paths removed before dotfiles setup. Missing paths
	// are not errors.
	RemoveFiles []string
	// Env maps variable names to values exported via the profile file.
	Env map[string]string
	// EnvFile is the profile receiving the env block. Empty means DefaultEnvFile.
	EnvFile string
	// Targets are optional named overlays over this base manifest.
	Targets map[string]Overlay

	source string
}

// manifestRaw is the wire representation for YAML and TOML unmarshaling.
type manifestRaw struct {
	PackageManager string                `yaml:"package_manager,omitempty" toml:"package_manager,omitempty"`
	Packages       []string              `yaml:"packages,omitempty" toml:"packages,omitempty"`
	GlobalTools    []string              `yaml:"global_tools,omitempty" toml:"global_tools,omitempty"`
	DotfilesURL    string                `yaml:"dotfiles_url,omitempty" toml:"dotfiles_url,omitempty"`
	DotfilesRef    string                `yaml:"dotfiles_ref,omitempty" toml:"dotfiles_ref,omitempty"`
	DotfilesDir    string                `yaml:"dotfiles_dir,omitempty" toml:"dotfiles_dir,omitempty"`
	SetupScript    string                `yaml:"setup_script,omitempty" toml:"setup_script,omitempty"`
	RemoveFiles    []string              `yaml:"remove_files,omitempty" toml:"remove_files,omitempty"`
	Env            map[string]string     `yaml:"env,omitempty" toml:"env,omitempty"`
	EnvFile        string                `yaml:"env_file,omitempty" toml:"env_file,omitempty"`
	Targets        map[string]overlayRaw `yaml:"targets,omitempty" toml:"targets,omitempty"`
}

// ParseManifest parses a Manifest from YAML bytes.
// Parsing is pure: it reads nothing but the given bytes, so loading the same
// file twice yields equal manifests.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw manifestRaw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromRaw(raw)
}

func fromRaw(raw manifestRaw) (*Manifest, error) {
	tools, err := parseToolSpecs(raw.GlobalTools)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		PackageManager: raw.PackageManager,
		Packages:       raw.Packages,
		GlobalTools:    tools,
		Dotfiles: Dotfiles{
			URL:         raw.DotfilesURL,
			Ref:         raw.DotfilesRef,
			Dir:         raw.DotfilesDir,
			SetupScript: raw.SetupScript,
		},
		RemoveFiles: raw.RemoveFiles,
		Env:         raw.Env,
		EnvFile:     raw.EnvFile,
	}

	if len(raw.Targets) > 0 {
		m.Targets = make(map[string]Overlay, len(raw.Targets))
		for name, o := range raw.Targets {
			overlay, err := overlayFromRaw(o)
			if err != nil {
				return nil, err
			}
			m.Targets[name] = overlay
		}
	}

	return m, nil
}

func parseToolSpecs(specs []string) ([]ToolSpec, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	tools := make([]ToolSpec, 0, len(specs))
	for _, s := range specs {
		tool, err := ParseToolSpec(s)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// HasDotfiles returns true if a dotfiles repository is configured.
func (m *Manifest) HasDotfiles() bool {
	return m.Dotfiles.URL != ""
}

// EffectiveEnvFile returns the profile path, applying the default.
func (m *Manifest) EffectiveEnvFile() string {
	if m.EnvFile == "" {
		return DefaultEnvFile
	}
	return m.EnvFile
}

// TargetNames returns the names of defined targets, sorted.
func (m *Manifest) TargetNames() []string {
	names := make([]string, 0, len(m.Targets))
	for name := range m.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the path this manifest was loaded from.
func (m *Manifest) Source() string {
	return m.source
}

// SetSource records the path this manifest was loaded from.
func (m *Manifest) SetSource(path string) {
	m.source = path
}
