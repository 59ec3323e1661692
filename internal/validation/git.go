// Package validation provides input validation utilities.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Git input validation patterns.
var (
	// gitRefPattern allows alphanumeric, hyphens, underscores, slashes, and dots.
	gitRefPattern = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)

	// gitRemoteURLPatterns for valid git remote URLs and local paths.
	gitRemoteURLPatterns = []*regexp.Regexp{
		// HTTPS URLs: https://github.com/user/dotfiles.git or https://github.com/user/dotfiles
		regexp.MustCompile(`^https://[a-zA-Z0-9.-]+/[a-zA-Z0-9_./-]+(?:\.git)?$`),
		// SSH URLs: git@github.com:user/dotfiles.git
		regexp.MustCompile(`^git@[a-zA-Z0-9.-]+:[a-zA-Z0-9_./-]+(?:\.git)?$`),
		// SSH protocol: ssh://git@github.com/user/dotfiles.git
		regexp.MustCompile(`^ssh://[a-zA-Z0-9@.-]+/[a-zA-Z0-9_./-]+(?:\.git)?$`),
		// file:// URLs: file:///path/to/repo
		regexp.MustCompile(`^file:///[a-zA-Z0-9_./-]+$`),
		// Unix absolute paths: /path/to/repo
		regexp.MustCompile(`^/[a-zA-Z0-9_./-]+$`),
	}

	// Dangerous characters that should never appear in git inputs.
	// Note: null byte (\x00) is checked separately for a more specific error message
	dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}
)

// ValidateGitRef validates a git branch, tag, or commit-ish name.
func ValidateGitRef(ref string) error {
	if ref == "" {
		return nil // Empty is allowed, clone uses the remote default branch
	}

	if len(ref) > 255 {
		return fmt.Errorf("git ref too long (max 255 characters)")
	}

	if strings.ContainsRune(ref, '\x00') {
		return fmt.Errorf("git ref contains null byte")
	}

	for _, char := range dangerousChars {
		if strings.Contains(ref, char) {
			return fmt.Errorf("git ref contains invalid character: %q", char)
		}
	}

	if !gitRefPattern.MatchString(ref) {
		return fmt.Errorf("invalid git ref format: must contain only alphanumeric characters, hyphens, underscores, slashes, and dots")
	}

	// A leading dash would be parsed as a git option
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("git ref cannot start with '-'")
	}

	if strings.Contains(ref, "..") {
		return fmt.Errorf("git ref cannot contain '..'")
	}

	return nil
}

// ValidateGitRemoteURL validates a git remote URL.
func ValidateGitRemoteURL(url string) error {
	if url == "" {
		return fmt.Errorf("remote URL cannot be empty")
	}

	if len(url) > 2048 {
		return fmt.Errorf("remote URL too long (max 2048 characters)")
	}

	if strings.ContainsRune(url, '\x00') {
		return fmt.Errorf("remote URL contains null byte")
	}

	for _, char := range dangerousChars {
		if strings.Contains(url, char) {
			return fmt.Errorf("remote URL contains invalid character: %q", char)
		}
	}

	for _, pattern := range gitRemoteURLPatterns {
		if pattern.MatchString(url) {
			return nil
		}
	}

	return fmt.Errorf("invalid git remote URL format: must be HTTPS, SSH URL, or local path")
}

// ValidateGitPath validates a local path for git operations.
func ValidateGitPath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains invalid character: %q", char)
		}
	}

	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path contains null byte")
	}

	return nil
}
