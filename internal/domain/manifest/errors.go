package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Error codes for categorization.
const (
	ErrCodeManifestNotFound    = "MANIFEST_NOT_FOUND"
	ErrCodeManifestParse       = "MANIFEST_PARSE"
	ErrCodeManifestInvalid     = "MANIFEST_INVALID"
	ErrCodeTargetNotFound      = "TARGET_NOT_FOUND"
	ErrCodeDotfilesUnreachable = "DOTFILES_UNREACHABLE"
)

// UserError represents a user-friendly error with actionable suggestions.
// Every manifest-level failure surfaces as one of these so the CLI can map
// it to the validation exit code.
type UserError struct {
	Code       string // Error code for categorization (e.g., "MANIFEST_PARSE")
	Message    string // User-friendly error message
	Context    string // File path, line number, or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}

	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a new UserError with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	newErr := *e
	newErr.Context = ctx
	return &newErr
}

// WithSuggestion returns a new UserError with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	newErr := *e
	newErr.Suggestion = suggestion
	return &newErr
}

// WithUnderlying returns a new UserError wrapping another error.
func (e *UserError) WithUnderlying(err error) *UserError {
	newErr := *e
	newErr.Underlying = err
	return &newErr
}

// ErrorList accumulates multiple errors for comprehensive reporting.
type ErrorList struct {
	errors []*UserError
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{
		errors: make([]*UserError, 0),
	}
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddValidation adds a field validation error to the list.
func (l *ErrorList) AddValidation(field, message, suggestion string) {
	l.Add(&UserError{
		Code:       ErrCodeManifestInvalid,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if there are any errors.
func (l *ErrorList) HasErrors() bool {
	return len(l.errors) > 0
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns the list of errors.
func (l *ErrorList) Errors() []*UserError {
	result := make([]*UserError, len(l.errors))
	copy(result, l.errors)
	return result
}

// Error implements the error interface for ErrorList.
func (l *ErrorList) Error() string {
	if len(l.errors) == 0 {
		return ""
	}
	if len(l.errors) == 1 {
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Format returns a detailed formatted output of all errors.
func (l *ErrorList) Format() string {
	if len(l.errors) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n--- Error %d ---\n", i+1)
		b.WriteString(err.Format())
		b.WriteString("\n")
	}
	return b.String()
}

// AsError returns the ErrorList as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// Common user-friendly error constructors.

// NewManifestNotFoundError creates an error for a missing manifest file.
func NewManifestNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeManifestNotFound,
		Message:    fmt.Sprintf("manifest file not found: %s", path),
		Context:    path,
		Suggestion: "Run 'provision init' to create a starter manifest, or check the --manifest path.",
	}
}

// NewTargetNotFoundError creates an error for an unknown target name.
func NewTargetNotFoundError(name string, available []string) *UserError {
	suggestion := "This manifest defines no targets; drop the --target flag."
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available targets: %s", strings.Join(available, ", "))
	}
	return &UserError{
		Code:       ErrCodeTargetNotFound,
		Message:    fmt.Sprintf("target '%s' not found in manifest", name),
		Suggestion: suggestion,
	}
}

// NewDotfilesUnreachableError creates an error for an unreachable dotfiles remote.
func NewDotfilesUnreachableError(url string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeDotfilesUnreachable,
		Message:    fmt.Sprintf("dotfiles repository is not reachable: %s", url),
		Context:    url,
		Suggestion: "Check the URL, your network connection, and your git credentials.",
		Underlying: err,
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// NewYAMLParseError translates technical YAML errors into user-friendly messages.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	var message, suggestion string

	switch {
	case strings.Contains(errStr, "cannot unmarshal !!map into []string"):
		message = "expected a list but found a nested object"
		suggestion = `Fields like packages and remove_files take a plain list:

  packages:
    - git
    - curl`

	case strings.Contains(errStr, "cannot unmarshal !!seq into map"):
		message = "expected key/value pairs but found a list"
		suggestion = `The env field maps names to values:

  env:
    SHELL: /usr/bin/zsh`

	case strings.Contains(errStr, "cannot unmarshal !!str into"):
		message = "unexpected string value"
		suggestion = "Check that nested values are properly structured with correct indentation."

	case strings.Contains(errStr, "did not find expected key"):
		message = "missing required field or incorrect indentation"
		suggestion = "YAML is sensitive to indentation. Use 2 spaces (not tabs) for each level."

	case strings.Contains(errStr, "mapping values are not allowed"):
		message = "invalid YAML structure"
		suggestion = "Check for missing colons after keys, or incorrect indentation."

	case strings.Contains(errStr, "found character that cannot start"):
		message = "invalid character in YAML"
		suggestion = "Quote string values that contain special characters like ':', '#', or '{'."

	default:
		message = "invalid YAML syntax"
		suggestion = "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters."
	}

	// Extract line number if present
	context := path
	if strings.Contains(errStr, "line ") {
		parts := strings.Split(errStr, "line ")
		if len(parts) > 1 {
			lineInfo := strings.Split(parts[1], ":")[0]
			context = fmt.Sprintf("%s (line %s)", path, lineInfo)
		}
	}

	return &UserError{
		Code:       ErrCodeManifestParse,
		Message:    message,
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// NewTOMLParseError translates TOML decode errors into user-friendly messages.
func NewTOMLParseError(path string, err error) *UserError {
	context := path
	suggestion := "Check your TOML syntax. Strings must be quoted and arrays use [ ] brackets."

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, _ := decodeErr.Position()
		context = fmt.Sprintf("%s (line %d)", path, row)
		suggestion = decodeErr.Error()
	}

	return &UserError{
		Code:       ErrCodeManifestParse,
		Message:    "invalid TOML syntax",
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}
