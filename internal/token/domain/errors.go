package domain

import (
	"github.com/allisson/uidoperator/internal/errors"
)

var (
	// ErrInvalidToken is returned for every decoding failure. Callers cannot tell causes apart.
	ErrInvalidToken = errors.ErrInvalidToken

	// ErrMissingToken indicates the request carried no token.
	ErrMissingToken = errors.Wrap(errors.ErrInvalidInput, "required parameter missing: token")

	// ErrMissingRefreshToken indicates a refresh request carried no refresh token.
	ErrMissingRefreshToken = errors.Wrap(errors.ErrInvalidInput, "required parameter missing: refresh_token")

	// ErrUnsupportedVersion indicates a token generation the codec cannot produce.
	ErrUnsupportedVersion = errors.New("unsupported token version")

	// ErrPayloadTooLarge indicates a payload field does not fit the wire format.
	ErrPayloadTooLarge = errors.New("token payload field out of range")
)
