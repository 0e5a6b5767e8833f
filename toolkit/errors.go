package toolkit

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure inside the tool-calling pipeline.
type ErrorKind string

const (
	KindRegistration       ErrorKind = "registration_error"
	KindParse              ErrorKind = "parse_error"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidArguments   ErrorKind = "invalid_arguments"
	KindExecution          ErrorKind = "execution_fault"
	KindReturnTypeMismatch ErrorKind = "return_type_mismatch"
)

// Sentinel errors, one per ErrorKind. Use errors.Is to check.
var (
	ErrRegistration       = errors.New("tool registration failed")
	ErrParse              = errors.New("malformed tool call")
	ErrNotFound           = errors.New("tool not found")
	ErrInvalidArguments   = errors.New("invalid tool arguments")
	ErrExecution          = errors.New("tool execution failed")
	ErrReturnTypeMismatch = errors.New("tool return type mismatch")
)

var sentinels = map[ErrorKind]error{
	KindRegistration:       ErrRegistration,
	KindParse:              ErrParse,
	KindNotFound:           ErrNotFound,
	KindInvalidArguments:   ErrInvalidArguments,
	KindExecution:          ErrExecution,
	KindReturnTypeMismatch: ErrReturnTypeMismatch,
}

// ToolKitError provides a standardized structure for errors occurring within the toolkit.
// Code is machine-readable, Message is the text reported back to the model,
// and Err optionally carries the underlying cause (e.g. the error a tool returned).
type ToolKitError struct {
	Code    ErrorKind
	Message string
	Err     error
}

func (e *ToolKitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *ToolKitError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *ToolKitError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// NewError creates a ToolKitError with the given kind and message.
func NewError(kind ErrorKind, message string) error {
	return &ToolKitError{Code: kind, Message: message}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *ToolKitError {
	return &ToolKitError{Code: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the ErrorKind carried by err, or "" when err is not a ToolKitError.
func KindOf(err error) ErrorKind {
	var tkErr *ToolKitError
	if errors.As(err, &tkErr) {
		return tkErr.Code
	}
	return ""
}
