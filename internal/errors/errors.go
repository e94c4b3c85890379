// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Use cases return these (usually wrapped) and
// the HTTP layer maps them to response envelopes.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is malformed or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid credentials, or the caller is not
	// allowed to use the resource it asked for.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidClient indicates an authenticated client whose site cannot use the resource.
	// It matches ErrUnauthorized.
	ErrInvalidClient = fmt.Errorf("invalid client: %w", ErrUnauthorized)

	// ErrForbidden indicates the authenticated client lacks the role for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidToken indicates a presented token could not be decoded, authenticated or used.
	// Every decoding failure collapses into this single error.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnavailable indicates a dependency (opt-out store, key or salt snapshot) could not
	// answer. Callers must fail closed.
	ErrUnavailable = errors.New("unavailable")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
