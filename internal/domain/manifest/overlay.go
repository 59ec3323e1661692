package manifest

// Overlay is a named variant of the base manifest. Resolving a target lays
// the overlay over the base: lists are unioned in order, scalars are
// overridden when the overlay sets them, and env maps merge per key with the
// overlay winning.
type Overlay struct {
	PackageManager string
	Packages       []string
	GlobalTools    []ToolSpec
	DotfilesURL    string
	DotfilesRef    string
	DotfilesDir    string
	SetupScript    string
	RemoveFiles    []string
	Env            map[string]string
	EnvFile        string
}

// overlayRaw is the wire representation of an overlay.
type overlayRaw struct {
	PackageManager string            `yaml:"package_manager,omitempty" toml:"package_manager,omitempty"`
	Packages       []string          `yaml:"packages,omitempty" toml:"packages,omitempty"`
	GlobalTools    []string          `yaml:"global_tools,omitempty" toml:"global_tools,omitempty"`
	DotfilesURL    string            `yaml:"dotfiles_url,omitempty" toml:"dotfiles_url,omitempty"`
	DotfilesRef    string            `yaml:"dotfiles_ref,omitempty" toml:"dotfiles_ref,omitempty"`
	DotfilesDir    string            `yaml:"dotfiles_dir,omitempty" toml:"dotfiles_dir,omitempty"`
	SetupScript    string            `yaml:"setup_script,omitempty" toml:"setup_script,omitempty"`
	RemoveFiles    []string          `yaml:"remove_files,omitempty" toml:"remove_files,omitempty"`
	Env            map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
	EnvFile        string            `yaml:"env_file,omitempty" toml:"env_file,omitempty"`
}

func overlayFromRaw(raw overlayRaw) (Overlay, error) {
	tools, err := parseToolSpecs(raw.GlobalTools)
	if err != nil {
		return Overlay{}, err
	}
	return Overlay{
		PackageManager: raw.PackageManager,
		Packages:       raw.Packages,
		GlobalTools:    tools,
		DotfilesURL:    raw.DotfilesURL,
		DotfilesRef:    raw.DotfilesRef,
		DotfilesDir:    raw.DotfilesDir,
		SetupScript:    raw.SetupScript,
		RemoveFiles:    raw.RemoveFiles,
		Env:            raw.Env,
		EnvFile:        raw.EnvFile,
	}, nil
}

// ResolveTarget merges the named overlay over the base manifest and returns
// the result as a standalone manifest with no targets of its own.
// Returns a TARGET_NOT_FOUND error if the target is not defined.
func (m *Manifest) ResolveTarget(name string) (*Manifest, error) {
	overlay, ok := m.Targets[name]
	if !ok {
		return nil, NewTargetNotFoundError(name, m.TargetNames())
	}

	resolved := &Manifest{
		PackageManager: m.PackageManager,
		Packages:       unionStrings(m.Packages, overlay.Packages),
		GlobalTools:    unionTools(m.GlobalTools, overlay.GlobalTools),
		Dotfiles:       m.Dotfiles,
		RemoveFiles:    unionStrings(m.RemoveFiles, overlay.RemoveFiles),
		Env:            mergeEnv(m.Env, overlay.Env),
		EnvFile:        m.EnvFile,
		source:         m.source,
	}

	if overlay.PackageManager != "" {
		resolved.PackageManager = overlay.PackageManager
	}
	if overlay.DotfilesURL != "" {
		resolved.Dotfiles.URL = overlay.DotfilesURL
	}
	if overlay.DotfilesRef != "" {
		resolved.Dotfiles.Ref = overlay.DotfilesRef
	}
	if overlay.DotfilesDir != "" {
		resolved.Dotfiles.Dir = overlay.DotfilesDir
	}
	if overlay.SetupScript != "" {
		resolved.Dotfiles.SetupScript = overlay.SetupScript
	}
	if overlay.EnvFile != "" {
		resolved.EnvFile = overlay.EnvFile
	}

	return resolved, nil
}

// unionStrings appends extras to base, skipping entries already present.
// Base order is preserved; new entries keep their overlay order.
func unionStrings(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range extra {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}

// unionTools merges tool lists by package name. An overlay entry for a name
// already in the base replaces its version in place, so a target can pin a
// different release without installing the tool twice.
func unionTools(base, extra []ToolSpec) []ToolSpec {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	position := make(map[string]int, len(base))
	result := make([]ToolSpec, 0, len(base)+len(extra))
	for _, t := range base {
		if _, ok := position[t.Name()]; ok {
			continue
		}
		position[t.Name()] = len(result)
		result = append(result, t)
	}
	for _, t := range extra {
		if i, ok := position[t.Name()]; ok {
			result[i] = t
			continue
		}
		position[t.Name()] = len(result)
		result = append(result, t)
	}
	return result
}

// mergeEnv merges env maps with overlay keys winning.
func mergeEnv(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
