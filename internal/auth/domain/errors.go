package domain

import (
	"github.com/allisson/uidoperator/internal/errors"
)

var (
	// ErrClientNotFound indicates no client owns the presented key prefix.
	ErrClientNotFound = errors.Wrap(errors.ErrUnauthorized, "client not found")

	// ErrClientDisabled indicates the client exists but may not authenticate.
	ErrClientDisabled = errors.Wrap(errors.ErrUnauthorized, "client is disabled")

	// ErrInvalidAPIKey indicates a malformed key or a secret that does not match.
	ErrInvalidAPIKey = errors.Wrap(errors.ErrUnauthorized, "invalid api key")

	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")
)
