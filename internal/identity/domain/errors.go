package domain

import (
	"github.com/allisson/uidoperator/internal/errors"
)

var (
	// ErrInvalidIdentifier indicates neither a valid email nor a valid email hash was supplied.
	ErrInvalidIdentifier = errors.Wrap(errors.ErrInvalidInput, "invalid identifier")

	// ErrMissingIdentifier indicates the request carried no email or email_hash.
	ErrMissingIdentifier = errors.Wrap(errors.ErrInvalidInput, "required parameter missing: email or email_hash")

	// ErrBatchTooLarge indicates a batch mapping request exceeded the configured limit.
	ErrBatchTooLarge = errors.Wrap(errors.ErrInvalidInput, "too many identifiers in batch")

	// ErrSaltsUnavailable indicates the salt snapshot has no buckets.
	ErrSaltsUnavailable = errors.Wrap(errors.ErrUnavailable, "salt snapshot has no buckets")
)
