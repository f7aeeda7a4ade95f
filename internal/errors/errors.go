// Package errors provides structured error types and exit codes for automark.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/AndreyAkinshin/automark/pkg/automark"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = automark.ExitSuccess
	ExitRuntimeError     = automark.ExitFailure     // unreadable folder, report too wide
	ExitConfigError      = automark.ExitConfigError // configuration or test specification
	ExitEnvironmentError = automark.ExitEnvError    // missing interpreter, storage unreachable
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindSpec
	KindIO
	KindNotFound
	KindEnvironment
)

// Error is the base error type for automark.
type Error struct {
	Kind    ErrorKind
	Message string
	Subject string // File, folder or submission the error is about
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", e.Subject, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindSpec:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{Kind: KindRuntime, Message: message}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...any) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Spec reports a test specification that could not be parsed.
func Spec(path string, cause error) *Error {
	return &Error{Kind: KindSpec, Message: "invalid test specification", Subject: path, Cause: cause}
}

// IO reports a file or folder that could not be read or written.
func IO(path, message string, cause error) *Error {
	return &Error{Kind: KindIO, Message: message, Subject: path, Cause: cause}
}

// Environment creates a new environment error.
func Environment(message string) *Error {
	return &Error{Kind: KindEnvironment, Message: message}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...any) *Error {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{Kind: KindRuntime, Message: message, Cause: err}
}

// WrapKind wraps an error with additional context and a specific kind.
func WrapKind(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// NotFound creates a not found error.
func NotFound(what, name string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", what, name)}
}

// GetExitCode returns the exit code for an error. The outermost *Error in
// the chain decides.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitRuntimeError
}
