// Package errors provides structured error types and error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Wrap creates a new error by wrapping an existing error with additional context.
// This uses fmt.Errorf with %w verb for proper error chain support.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// New creates a new error using fmt.Errorf.
// This is a convenience function for creating errors with formatting.
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps multiple errors into a single error.
// This is a convenience wrapper around errors.Join (Go 1.20+).
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Sentinel errors for classifying faults across the bridge.
var (
	// ErrConnection marks document-session open or liveness-probe failures.
	// Tool operations treat it as recoverable via reconnect.
	ErrConnection = errors.New("connection error")

	// ErrExecution marks kernel submission or output-read failures.
	ErrExecution = errors.New("execution error")

	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout error")
	ErrNotFound      = errors.New("not found error")
	ErrInternal      = errors.New("internal error")
)

// Connection wraps a fault as a connection error so callers can classify it
// with errors.Is(err, ErrConnection).
func Connection(message string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrConnection, message)
	}
	return fmt.Errorf("%w: %s: %w", ErrConnection, message, cause)
}

// Execution wraps a fault as an execution error.
func Execution(message string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrExecution, message)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecution, message, cause)
}

// Configuration wraps a fault as a configuration error.
func Configuration(message string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrConfiguration, message)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfiguration, message, cause)
}
