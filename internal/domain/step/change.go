package step

import "fmt"

// ChangeType represents the kind of change a step will make.
type ChangeType string

const (
	// ChangeTypeInstall indicates packages or tools will be installed.
	ChangeTypeInstall ChangeType = "install"
	// ChangeTypeRemove indicates an existing file or directory will be removed.
	ChangeTypeRemove ChangeType = "remove"
	// ChangeTypeClone indicates a repository will be cloned.
	ChangeTypeClone ChangeType = "clone"
	// ChangeTypeRun indicates a script or command will be executed.
	ChangeTypeRun ChangeType = "run"
	// ChangeTypeWrite indicates file content will be created or updated.
	ChangeTypeWrite ChangeType = "write"
	// ChangeTypeNone indicates no change is needed.
	ChangeTypeNone ChangeType = "none"
)

// String returns the string representation of the change type.
func (c ChangeType) String() string {
	return string(c)
}

// Change represents a planned action from a step.
type Change struct {
	changeType ChangeType
	resource   string
	name       string
	detail     string
}

// NewChange creates a new Change.
func NewChange(changeType ChangeType, resource, name, detail string) Change {
	return Change{
		changeType: changeType,
		resource:   resource,
		name:       name,
		detail:     detail,
	}
}

// Type returns the change type.
func (c Change) Type() ChangeType {
	return c.changeType
}

// Resource returns the resource kind (e.g., "package", "file", "repository").
func (c Change) Resource() string {
	return c.resource
}

// Name returns the resource name.
func (c Change) Name() string {
	return c.name
}

// Detail returns supplementary context (e.g., the package manager used).
func (c Change) Detail() string {
	return c.detail
}

// Summary returns a human-readable one-line summary of the change.
func (c Change) Summary() string {
	var line string
	switch c.changeType {
	case ChangeTypeInstall, ChangeTypeClone:
		line = fmt.Sprintf("+ %s %s", c.resource, c.name)
	case ChangeTypeRemove:
		line = fmt.Sprintf("- %s %s", c.resource, c.name)
	case ChangeTypeRun:
		line = fmt.Sprintf("> %s %s", c.resource, c.name)
	case ChangeTypeWrite:
		line = fmt.Sprintf("~ %s %s", c.resource, c.name)
	default:
		line = fmt.Sprintf("  %s %s", c.resource, c.name)
	}
	if c.detail != "" {
		line += fmt.Sprintf(" (%s)", c.detail)
	}
	return line
}

// IsEmpty returns true if this change represents no meaningful action.
func (c Change) IsEmpty() bool {
	return (c.changeType == ChangeTypeNone || c.changeType == "") && c.resource == "" && c.name == ""
}
