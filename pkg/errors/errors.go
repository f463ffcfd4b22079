// Package errors provides structured error types for witview.
//
// Every failure that crosses the view-mode coordinator boundary is an [*Error]
// carrying a machine-readable [Code]. Callers branch on the code, never on the
// message:
//
//	if err := coord.SwitchViewMode(ctx, view.ModeUML); err != nil {
//	    if errors.Is(err, errors.ErrCodeIncompatibleView) {
//	        // keep the current projection
//	    }
//	}
//
// # Error Codes
//
// The switch taxonomy:
//   - NO_DIAGRAM: no canonical diagram is available to transform
//   - NO_TRANSFORMER: no strategy is registered for the diagram type
//   - INCOMPATIBLE_VIEW: unknown target, wrong diagram type, or the strategy declined
//   - TRANSFORM_FAILED: the strategy ran but reported an internal failure
//
// Input and infrastructure errors use the INVALID_*, NOT_FOUND and INTERNAL_*
// families.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// View switching errors.
const (
	ErrCodeNoDiagram        Code = "NO_DIAGRAM"
	ErrCodeNoTransformer    Code = "NO_TRANSFORMER"
	ErrCodeIncompatibleView Code = "INCOMPATIBLE_VIEW"
	ErrCodeTransformFailed  Code = "TRANSFORM_FAILED"
)

// Input and infrastructure errors.
const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidViewMode    Code = "INVALID_VIEW_MODE"
	ErrCodeInvalidDiagramType Code = "INVALID_DIAGRAM_TYPE"

	ErrCodeNotFound Code = "NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsSwitchFailure reports whether err belongs to the view switching taxonomy.
func IsSwitchFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeNoDiagram, ErrCodeNoTransformer, ErrCodeIncompatibleView, ErrCodeTransformFailed:
		return true
	}
	return false
}
