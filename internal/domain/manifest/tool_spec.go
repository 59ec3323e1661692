package manifest

import (
	"errors"
	"strings"
)

// Errors for ToolSpec parsing.
var (
	ErrEmptyToolSpec   = errors.New("tool spec cannot be empty")
	ErrDanglingVersion = errors.New("tool spec has '@' but no version")
)

// LatestVersion is the npm dist-tag selecting whatever version is current.
const LatestVersion = "latest"

// ToolSpec identifies a global npm tool with an optional version pin.
// Written as "name" or "name@version"; scoped names ("@org/tool") keep
// their leading @.
type ToolSpec struct {
	name    string
	version string
}

// ParseToolSpec parses a spec string like "pnpm@10.24.0" or "@angular/cli".
// The version is everything after the last '@' that is not the scope marker.
func ParseToolSpec(spec string) (ToolSpec, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return ToolSpec{}, ErrEmptyToolSpec
	}

	at := strings.LastIndex(trimmed, "@")
	if at <= 0 {
		// No version separator, or the '@' is the scope marker at position 0.
		return ToolSpec{name: trimmed}, nil
	}

	name, version := trimmed[:at], trimmed[at+1:]
	if version == "" {
		return ToolSpec{}, ErrDanglingVersion
	}
	return ToolSpec{name: name, version: version}, nil
}

// MustParseToolSpec parses a spec string, panicking on error.
func MustParseToolSpec(spec string) ToolSpec {
	tool, err := ParseToolSpec(spec)
	if err != nil {
		panic("invalid tool spec: " + spec + ": " + err.Error())
	}
	return tool
}

// Name returns the package name (including scope for scoped packages).
func (t ToolSpec) Name() string {
	return t.name
}

// Version returns the version pin, or empty if the latest is wanted.
func (t ToolSpec) Version() string {
	return t.version
}

// IsPinned returns true if a specific version is requested.
func (t ToolSpec) IsPinned() bool {
	return t.version != ""
}

// String returns the canonical spec string.
func (t ToolSpec) String() string {
	if t.version == "" {
		return t.name
	}
	return t.name + "@" + t.version
}

// IsZero returns true for the zero-value spec.
func (t ToolSpec) IsZero() bool {
	return t.name == ""
}
