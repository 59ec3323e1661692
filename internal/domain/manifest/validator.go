package manifest

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/provision/internal/domain/platform"
	"github.com/felixgeelhaar/provision/internal/validation"
)

// Validator checks a parsed manifest for values that would produce broken or
// dangerous steps. Validation is separate from loading so that loading stays
// a pure parse.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the manifest and all of its target overlays.
// The returned list is empty when the manifest is valid.
func (v *Validator) Validate(m *Manifest) *ErrorList {
	list := NewErrorList()

	v.validatePackageManager(list, "", m.PackageManager)
	v.validatePackages(list, "", m.Packages)
	v.validateTools(list, "", m.GlobalTools)
	baseCoherent := v.validateDotfiles(list, "", m.Dotfiles)
	v.validatePaths(list, "", m.RemoveFiles, m.EnvFile)
	v.validateEnv(list, "", m.Env)

	for _, name := range m.TargetNames() {
		prefix := "targets." + name + "."
		overlay := m.Targets[name]

		v.validatePackageManager(list, prefix, overlay.PackageManager)
		v.validatePackages(list, prefix, overlay.Packages)
		v.validateTools(list, prefix, overlay.GlobalTools)
		v.validateOverlayDotfiles(list, prefix, overlay, m.Dotfiles, baseCoherent)
		v.validatePaths(list, prefix, overlay.RemoveFiles, overlay.EnvFile)
		v.validateEnv(list, prefix, overlay.Env)
	}

	return list
}

func (v *Validator) validatePackageManager(list *ErrorList, prefix, name string) {
	if name == "" {
		return
	}
	if _, ok := platform.ParseManager(name); !ok {
		list.AddValidation(
			prefix+"package_manager",
			fmt.Sprintf("unsupported package manager %q", name),
			fmt.Sprintf("Supported managers: %s. Leave unset to detect from the platform.", strings.Join(platform.ManagerNames(), ", ")),
		)
	}
}

func (v *Validator) validatePackages(list *ErrorList, prefix string, packages []string) {
	for i, pkg := range packages {
		if err := validation.ValidatePackageName(pkg); err != nil {
			list.AddValidation(
				fmt.Sprintf("%spackages[%d]", prefix, i),
				err.Error(),
				"Package names may contain letters, digits, dots, hyphens, underscores, and plus signs.",
			)
		}
	}
}

func (v *Validator) validateTools(list *ErrorList, prefix string, tools []ToolSpec) {
	for i, tool := range tools {
		field := fmt.Sprintf("%sglobal_tools[%d]", prefix, i)

		if err := validation.ValidateToolSpec(tool.String()); err != nil {
			list.AddValidation(field, err.Error(),
				"Tool specs look like 'name', 'name@version', or '@scope/name@version'.")
			continue
		}

		if tool.IsPinned() && !isValidVersionPin(tool.Version()) {
			list.AddValidation(field,
				fmt.Sprintf("%q is not a valid version pin", tool.Version()),
				"Pin to a semantic version like 10.24.0, or use a dist-tag like latest.")
		}
	}
}

// isValidVersionPin accepts semantic versions (with or without the v prefix)
// and lowercase dist-tags such as "latest" or "next".
func isValidVersionPin(version string) bool {
	if version == "" {
		return false
	}
	c := version[0]
	if c >= '0' && c <= '9' {
		return semver.IsValid("v" + version)
	}
	if c == 'v' {
		return semver.IsValid(version)
	}
	// dist-tag
	for _, r := range version {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

// validateDotfiles checks the dotfiles block and reports whether it is
// coherent (a URL is present whenever any other dotfiles field is set).
func (v *Validator) validateDotfiles(list *ErrorList, prefix string, d Dotfiles) bool {
	if d.URL == "" {
		if d.Ref != "" || d.Dir != "" || d.SetupScript != "" {
			list.AddValidation(
				prefix+"dotfiles_url",
				"dotfiles settings require dotfiles_url",
				"Set dotfiles_url to the repository to clone, or remove the other dotfiles fields.")
			return false
		}
		return true
	}

	if err := validation.ValidateGitRemoteURL(d.URL); err != nil {
		list.AddValidation(prefix+"dotfiles_url", err.Error(),
			"Use an HTTPS URL, an SSH URL like git@host:user/repo.git, or a local path.")
	}
	if err := validation.ValidateGitRef(d.Ref); err != nil {
		list.AddValidation(prefix+"dotfiles_ref", err.Error(),
			"Use a branch or tag name such as main or v1.2.0.")
	}
	if d.Dir != "" {
		if err := validation.ValidatePath(d.Dir); err != nil {
			list.AddValidation(prefix+"dotfiles_dir", err.Error(),
				"Use an absolute path or a home-relative path like ~/dotfiles.")
		}
	}
	if d.SetupScript != "" {
		if err := validation.ValidateScriptPath(d.SetupScript); err != nil {
			list.AddValidation(prefix+"setup_script", err.Error(),
				"The setup script path is relative to the clone, e.g. stow.sh or scripts/setup.sh.")
		}
	}
	return true
}

// validateOverlayDotfiles syntax-checks the overlay's own dotfiles fields and
// verifies the merged view still names a repository.
func (v *Validator) validateOverlayDotfiles(list *ErrorList, prefix string, o Overlay, base Dotfiles, baseCoherent bool) {
	if o.DotfilesURL != "" {
		if err := validation.ValidateGitRemoteURL(o.DotfilesURL); err != nil {
			list.AddValidation(prefix+"dotfiles_url", err.Error(),
				"Use an HTTPS URL, an SSH URL like git@host:user/repo.git, or a local path.")
		}
	}
	if o.DotfilesRef != "" {
		if err := validation.ValidateGitRef(o.DotfilesRef); err != nil {
			list.AddValidation(prefix+"dotfiles_ref", err.Error(),
				"Use a branch or tag name such as main or v1.2.0.")
		}
	}
	if o.DotfilesDir != "" {
		if err := validation.ValidatePath(o.DotfilesDir); err != nil {
			list.AddValidation(prefix+"dotfiles_dir", err.Error(),
				"Use an absolute path or a home-relative path like ~/dotfiles.")
		}
	}
	if o.SetupScript != "" {
		if err := validation.ValidateScriptPath(o.SetupScript); err != nil {
			list.AddValidation(prefix+"setup_script", err.Error(),
				"The setup script path is relative to the clone, e.g. stow.sh or scripts/setup.sh.")
		}
	}

	if !baseCoherent {
		// Already reported against the base manifest.
		return
	}

	mergedURL := base.URL
	if o.DotfilesURL != "" {
		mergedURL = o.DotfilesURL
	}
	overlayAddsDetail := o.DotfilesRef != "" || o.DotfilesDir != "" || o.SetupScript != ""
	if mergedURL == "" && overlayAddsDetail {
		list.AddValidation(
			prefix+"dotfiles_url",
			"dotfiles settings require dotfiles_url",
			"Set dotfiles_url in the base manifest or in this target.")
	}
}

func (v *Validator) validatePaths(list *ErrorList, prefix string, removeFiles []string, envFile string) {
	for i, path := range removeFiles {
		if err := validation.ValidatePath(path); err != nil {
			list.AddValidation(
				fmt.Sprintf("%sremove_files[%d]", prefix, i),
				err.Error(),
				"Use absolute paths or home-relative paths like ~/.zshrc.")
		}
	}
	if envFile != "" {
		if err := validation.ValidatePath(envFile); err != nil {
			list.AddValidation(prefix+"env_file", err.Error(),
				"Use an absolute path or a home-relative path like ~/.profile.")
		}
	}
}

func (v *Validator) validateEnv(list *ErrorList, prefix string, env map[string]string) {
	// Sorted iteration keeps error order stable across runs.
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := validation.ValidateEnvName(k); err != nil {
			list.AddValidation(prefix+"env."+k, err.Error(),
				"Variable names must match [A-Za-z_][A-Za-z0-9_]*.")
		}
		if err := validation.ValidateEnvValue(env[k]); err != nil {
			list.AddValidation(prefix+"env."+k, err.Error(),
				"Values must be single-line and free of control characters.")
		}
	}
}
