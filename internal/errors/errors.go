// Package errors defines the stable error code system for cibootstrap.
package errors

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Code is a stable error code string.
type Code string

// Error codes. Printed verbatim on stderr; scripts may match on them.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Repository and manifest discovery
	ENoRepo          Code = "E_NO_REPO"
	ENoManifest      Code = "E_NO_MANIFEST"
	EInvalidManifest Code = "E_INVALID_MANIFEST"
	EMetadataFailed  Code = "E_METADATA_FAILED"

	// Configuration, templates and operator input
	EInvalidConfig      Code = "E_INVALID_CONFIG"
	EUnknownTemplate    Code = "E_UNKNOWN_TEMPLATE"
	EUnreadableTemplate Code = "E_UNREADABLE_TEMPLATE"
	EPromptFailed       Code = "E_PROMPT_FAILED"

	// Writing artifacts
	EFileSystem Code = "E_FILESYSTEM"
)

// BootstrapError is the standard error type for cibootstrap errors.
type BootstrapError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *BootstrapError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BootstrapError) Unwrap() error {
	return e.Cause
}

// New creates a new BootstrapError with the given code and message.
func New(code Code, msg string) error {
	return &BootstrapError{Code: code, Msg: msg}
}

// NewWithDetails creates a new BootstrapError with code, message, and details.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &BootstrapError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new BootstrapError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &BootstrapError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new BootstrapError wrapping an underlying error with details.
// Details map is copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &BootstrapError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a BootstrapError.
func GetCode(err error) Code {
	var be *BootstrapError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// AsBootstrapError returns (*BootstrapError, true) if err is or wraps a BootstrapError.
func AsBootstrapError(err error) (*BootstrapError, bool) {
	var be *BootstrapError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsRecoverable reports whether err is a condition the run can continue past.
// Only a missing package manifest qualifies; everything else aborts the run.
func IsRecoverable(err error) bool {
	return GetCode(err) == ENoManifest
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
//
// followed by the cause, if any, and sorted details.
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var be *BootstrapError
	if !errors.As(err, &be) {
		fmt.Fprintln(w, err.Error())
		return
	}
	fmt.Fprintf(w, "error_code: %s\n", be.Code)
	fmt.Fprintln(w, be.Msg)
	if be.Cause != nil {
		fmt.Fprintf(w, "cause: %v\n", be.Cause)
	}
	for _, k := range sortedKeys(be.Details) {
		fmt.Fprintf(w, "%s: %s\n", k, be.Details[k])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
