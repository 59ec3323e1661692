package step

import (
	"errors"
	"regexp"
	"strings"
)

// ID uniquely identifies a step within a provisioning run.
// Format: provider:action or provider:action:resource
// (e.g., "packages:install", "dotfiles:remove:.zshrc").
type ID struct {
	value string
}

// Errors for ID validation.
var (
	ErrEmptyID   = errors.New("step ID cannot be empty")
	ErrInvalidID = errors.New("step ID format invalid: segments must be alphanumeric with dots, hyphens, underscores, slashes, or tildes, separated by colons")
)

// idPattern validates step ID format. The leading segment names the provider
// and must start alphanumeric; later segments may start with a dot or tilde
// so dotfile names and home-relative paths stay readable.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/~-]*(?::[a-zA-Z0-9._/~-]+)*$`)

// NewID creates a new ID from a string.
func NewID(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ID{}, ErrEmptyID
	}

	if !idPattern.MatchString(trimmed) {
		return ID{}, ErrInvalidID
	}

	return ID{value: trimmed}, nil
}

// MustNewID creates a new ID from a string, panicking on error.
// Use this for compile-time known values that should never fail validation.
func MustNewID(value string) ID {
	id, err := NewID(value)
	if err != nil {
		panic("invalid step ID: " + value + ": " + err.Error())
	}
	return id
}

// String returns the string representation.
func (id ID) String() string {
	return id.value
}

// Equals checks equality with another ID.
func (id ID) Equals(other ID) bool {
	return id.value == other.value
}

// Provider extracts the provider name (first segment).
func (id ID) Provider() string {
	parts := strings.SplitN(id.value, ":", 2)
	return parts[0]
}

// IsZero returns true if this is a zero-value ID.
func (id ID) IsZero() bool {
	return id.value == ""
}
