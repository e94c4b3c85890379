package domain

import (
	"github.com/allisson/uidoperator/internal/errors"
)

var (
	// ErrNoActiveKey indicates no key is active for the requested site.
	ErrNoActiveKey = errors.Wrap(errors.ErrUnavailable, "no active encryption key")

	// ErrForbiddenSite indicates the client's site may not list keys.
	ErrForbiddenSite = errors.Wrap(errors.ErrInvalidClient, "site is not allowed to list keys")
)
