package domain

import (
	"github.com/allisson/uidoperator/internal/errors"
)

var (
	// ErrOptOutUnavailable indicates the opt-out store could not answer in time or failed.
	// It is never treated as "not opted out".
	ErrOptOutUnavailable = errors.Wrap(errors.ErrUnavailable, "opt-out store unavailable")

	// ErrWriterQueueFull indicates the background writer cannot accept more opt-outs.
	ErrWriterQueueFull = errors.Wrap(ErrOptOutUnavailable, "opt-out writer queue is full")

	// ErrTooManyPending indicates too many opt-outs are accepted but not yet persisted.
	ErrTooManyPending = errors.Wrap(ErrOptOutUnavailable, "too many opt-outs waiting to be persisted")

	// ErrEmptyIdentityHash indicates an opt-out without an identity.
	ErrEmptyIdentityHash = errors.Wrap(errors.ErrInvalidInput, "identity hash is required")
)
