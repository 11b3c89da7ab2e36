// Package errors provides the error taxonomy shared by every devhost component.
//
// RouteError is the single structured error type. It carries:
//   - Code: the category (VALIDATION, ALREADY_EXISTS, MALFORMED_CONFIG, ...)
//   - Message: human-readable description
//   - Hostname: the route hostname involved (if applicable)
//   - Path: the file involved (if applicable)
//   - Line: 1-based line number for malformed configuration
//   - Err: the underlying wrapped error (if any)
//
// Filesystem failures are classified once, at the store boundary, with FromFS.
// Callers compare by category:
//
//	if errors.Is(err, errors.ErrDuplicateRoute) {
//	    // route already configured
//	}
//
//	code := errors.CodeOf(err) // "" for foreign errors
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"        // Route or file not found
	ErrCodeAlreadyExists   ErrorCode = "ALREADY_EXISTS"   // Route already configured
	ErrCodeValidation      ErrorCode = "VALIDATION"       // Input validation failed
	ErrCodePermission      ErrorCode = "PERMISSION"       // Permission denied
	ErrCodeCertificate     ErrorCode = "CERTIFICATE"      // Certificate provisioning failed
	ErrCodeIO              ErrorCode = "IO"               // Read/write/rename failure
	ErrCodeMalformedConfig ErrorCode = "MALFORMED_CONFIG" // Unbalanced or nested blocks
	ErrCodeConfig          ErrorCode = "CONFIG"           // devhost configuration error
	ErrCodeDriver          ErrorCode = "DRIVER"           // Web server control error
	ErrCodeInternal        ErrorCode = "INTERNAL"         // Internal/unexpected error
)

// RouteError represents a structured error with context about the operation.
type RouteError struct {
	Code     ErrorCode
	Message  string
	Hostname string
	Path     string
	Line     int
	Err      error
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	msg := e.Message
	if e.Path != "" {
		if e.Line > 0 {
			msg = fmt.Sprintf("%s:%d: %s", e.Path, e.Line, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Path, msg)
		}
	}
	if e.Hostname != "" {
		msg = fmt.Sprintf("route %s: %s", e.Hostname, msg)
	}
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *RouteError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *RouteError) Is(target error) bool {
	t, ok := target.(*RouteError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for use with errors.Is.
var (
	// ErrRouteNotFound indicates no block or entry matched the hostname.
	ErrRouteNotFound = &RouteError{Code: ErrCodeNotFound, Message: "route not found"}

	// ErrDuplicateRoute indicates a block already claims the hostname.
	ErrDuplicateRoute = &RouteError{Code: ErrCodeAlreadyExists, Message: "route already exists"}

	// ErrInvalidRoute indicates route intent failed validation.
	ErrInvalidRoute = &RouteError{Code: ErrCodeValidation, Message: "invalid route"}

	// ErrInvalidAddress indicates a hosts address is not an IP literal.
	ErrInvalidAddress = &RouteError{Code: ErrCodeValidation, Message: "invalid address"}

	// ErrPermissionDenied indicates the process may not touch a file.
	ErrPermissionDenied = &RouteError{Code: ErrCodePermission, Message: "permission denied"}

	// ErrCertificate indicates certificate generation failed.
	ErrCertificate = &RouteError{Code: ErrCodeCertificate, Message: "certificate provisioning failed"}

	// ErrIO indicates a file could not be read, written or renamed.
	ErrIO = &RouteError{Code: ErrCodeIO, Message: "i/o failure"}

	// ErrMalformedConfig indicates the vhost file could not be scanned into blocks.
	ErrMalformedConfig = &RouteError{Code: ErrCodeMalformedConfig, Message: "malformed configuration"}

	// ErrConfigInvalid indicates the devhost configuration is invalid or corrupt.
	ErrConfigInvalid = &RouteError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrToolNotInstalled indicates a required external binary is missing.
	ErrToolNotInstalled = &RouteError{Code: ErrCodeDriver, Message: "tool not installed"}
)

// NotFound creates an error for a route that doesn't exist.
func NotFound(hostname string) error {
	return &RouteError{
		Code:     ErrCodeNotFound,
		Message:  "route not found",
		Hostname: hostname,
	}
}

// DuplicateRoute creates an error for a hostname already claimed by a block.
func DuplicateRoute(hostname string) error {
	return &RouteError{
		Code:     ErrCodeAlreadyExists,
		Message:  "route already exists",
		Hostname: hostname,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &RouteError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) error {
	return Validation(fmt.Sprintf(format, args...))
}

// Malformed reports an unparseable vhost file at the given line.
func Malformed(path string, line int, msg string) error {
	return &RouteError{
		Code:    ErrCodeMalformedConfig,
		Message: msg,
		Path:    path,
		Line:    line,
	}
}

// Certificate wraps a provisioning failure for hostname.
func Certificate(hostname string, err error) error {
	return &RouteError{
		Code:     ErrCodeCertificate,
		Message:  "certificate provisioning failed",
		Hostname: hostname,
		Err:      err,
	}
}

// NotInstalled reports a missing external binary.
func NotInstalled(tool string) error {
	return &RouteError{
		Code:    ErrCodeDriver,
		Message: tool + " is not installed",
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &RouteError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// FromFS classifies a filesystem error for path. Permission failures map to
// PERMISSION, missing files to NOT_FOUND and everything else to IO. Errors
// that are already RouteErrors pass through unchanged.
func FromFS(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var re *RouteError
	if errors.As(err, &re) {
		return err
	}
	code := ErrCodeIO
	switch {
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		code = ErrCodePermission
	case errors.Is(err, fs.ErrNotExist):
		code = ErrCodeNotFound
	}
	return &RouteError{
		Code:    code,
		Message: op + " failed",
		Path:    path,
		Err:     unwrapPathError(err),
	}
}

func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// CodeOf returns the code of the first RouteError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *RouteError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// ExitCode maps err to a process exit status by its code. nil is 0 and
// errors without a code are 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case ErrCodeValidation:
		return 2
	case ErrCodeAlreadyExists:
		return 3
	case ErrCodeNotFound:
		return 4
	case ErrCodePermission:
		return 5
	case ErrCodeCertificate:
		return 6
	case ErrCodeIO:
		return 7
	case ErrCodeMalformedConfig:
		return 8
	case ErrCodeConfig:
		return 9
	case ErrCodeDriver:
		return 10
	default:
		return 1
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As

// New is a re-export of errors.New.
var New = errors.New
