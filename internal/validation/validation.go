// Package validation provides input validation utilities to prevent security
// vulnerabilities such as command injection and path traversal. Every value
// that ends up in a subprocess argument or a file path passes through here.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput         = errors.New("input cannot be empty")
	ErrInvalidPackageName = errors.New("invalid package name")
	ErrInvalidToolSpec    = errors.New("invalid tool spec")
	ErrInvalidPath        = errors.New("invalid path")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrCommandInjection   = errors.New("potential command injection detected")
	ErrNewlineInjection   = errors.New("newline injection detected")
	ErrInvalidEnvName     = errors.New("invalid environment variable name")
	ErrInvalidEnvValue    = errors.New("invalid environment variable value")
)

// Compiled regex patterns for validation (compiled once for performance).
var (
	// packageNameRegex matches valid OS package names: alphanumeric, hyphens,
	// underscores, dots, plus. Examples: "git", "neovim", "python3.11", "g++"
	packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// toolSpecRegex matches npm package names (scoped or unscoped with optional @version)
	// Examples: "typescript", "@types/node", "@angular/cli@17.1.0", "pnpm@10.24.0"
	toolSpecRegex = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*(@[a-zA-Z0-9._-]+)?$`)

	// envNameRegex matches POSIX environment variable names
	// Examples: "SHELL", "EDITOR", "XDG_CONFIG_HOME"
	envNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// envValueSafeRegex matches values free of control characters
	envValueSafeRegex = regexp.MustCompile(`^[^\x00-\x1f\x7f]*$`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidatePackageName validates an OS package name for apt, apk, dnf, or brew.
// Returns an error if the name is empty or contains invalid characters.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}

	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}

	// Check for shell metacharacters (defense in depth)
	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	return nil
}

// ValidateToolSpec validates a global tool spec with optional version pin.
// Supports scoped packages (@org/pkg) and version suffixes (@version).
// Examples: "typescript", "@types/node", "@angular/cli@17.1.0", "pnpm@10.24.0"
func ValidateToolSpec(spec string) error {
	if spec == "" {
		return ErrEmptyInput
	}

	if len(spec) > 256 {
		return fmt.Errorf("%w: spec too long", ErrInvalidToolSpec)
	}

	// npm package names are case-insensitive and published lowercase
	lower := strings.ToLower(spec)
	if !toolSpecRegex.MatchString(lower) {
		return fmt.Errorf("%w: %q is not a valid npm package spec", ErrInvalidToolSpec, spec)
	}

	if containsShellMeta(spec) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, spec)
	}

	return nil
}

// ValidatePath validates a user-supplied file path (removal targets, the
// env profile, the dotfiles clone directory). The path may be absolute or
// home-relative (~/...), but must not traverse upward or carry shell
// metacharacters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if len(path) > 4096 {
		return fmt.Errorf("%w: path too long (max 4096 characters)", ErrInvalidPath)
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	if containsShellMeta(path) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, path)
	}

	return nil
}

// ValidateScriptPath validates a setup script path. The path is resolved
// relative to the repository root, so it must be relative and stay inside it.
func ValidateScriptPath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if filepath.IsAbs(path) {
		return fmt.Errorf("%w: script path %q must be relative to the repository root", ErrInvalidPath, path)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q escapes the repository root", ErrPathTraversal, path)
	}

	if containsShellMeta(path) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, path)
	}

	return nil
}

// ValidateEnvName validates an environment variable name.
func ValidateEnvName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long", ErrInvalidEnvName)
	}

	if !envNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid POSIX name", ErrInvalidEnvName, name)
	}

	return nil
}

// ValidateEnvValue validates an environment variable value for injection
// into a shell profile. Newlines could inject additional profile lines.
func ValidateEnvValue(value string) error {
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("%w: value contains newlines", ErrNewlineInjection)
	}

	if !envValueSafeRegex.MatchString(value) {
		return fmt.Errorf("%w: contains control characters", ErrInvalidEnvValue)
	}

	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	normalized := filepath.Clean(path)

	segments := strings.Split(normalized, string(filepath.Separator))
	for _, seg := range segments {
		if seg == ".." {
			return true
		}
	}

	// URL-encoded traversal
	if strings.Contains(path, "%2e%2e") || strings.Contains(path, "%2E%2E") {
		return true
	}

	return false
}
