// Package errors defines the error classes shared by forge's typed errors.
//
// Every typed error in the engine matches exactly one class through
// errors.Is, so callers can tell user mistakes from environment failures
// without enumerating concrete types.
package errors

import (
	"errors"
	"fmt"
)

// Error classes.
var (
	// ErrInvalidInput indicates a request the user can fix: a bad project
	// name, an unknown archetype or feature, an incompatible selection, or
	// an unusable target directory.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTemplate indicates a template that failed to parse or render.
	ErrTemplate = errors.New("template error")

	// ErrEnvironment indicates a filesystem or external command failure.
	ErrEnvironment = errors.New("environment error")
)

// Exit codes returned by the forge binary.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidInput = 2
	ExitTemplate     = 3
	ExitEnvironment  = 4
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error

	// Printed is set when the command already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to the exit code of its class.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, ErrTemplate):
		return ExitTemplate
	case errors.Is(err, ErrEnvironment):
		return ExitEnvironment
	default:
		return ExitGeneralError
	}
}

// NewExitError wraps err with the exit code of its class.
func NewExitError(err error, printed bool) *ExitError {
	return &ExitError{Code: ExitCode(err), Err: err, Printed: printed}
}
