// Package usecase implements token generation, validation, refresh and logout.
package usecase

import (
	"context"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
)

// KeySource provides the current key snapshot.
type KeySource interface {
	Get() (*keysDomain.KeySnapshot, error)
}

// SaltSource provides the current salt snapshot.
type SaltSource interface {
	Get() (*identityDomain.SaltSnapshot, error)
}

// OptOutGate is consulted before reissuing tokens and records logouts.
type OptOutGate interface {
	// LatestOptOut returns the latest opt-out of a first-level hash. Errors mean the answer is
	// unknown and must be treated as a failure, never as "not opted out".
	LatestOptOut(ctx context.Context, identityHash string) (time.Time, bool, error)

	// Invalidate records an opt-out without waiting for it to be persisted.
	Invalidate(ctx context.Context, identityHash string) error
}

// TokenCodec encodes and decodes token bytes.
type TokenCodec interface {
	Encode(
		kind tokenDomain.Kind,
		payload tokenDomain.Payload,
		keys *keysDomain.KeySnapshot,
		now time.Time,
		version tokenDomain.Version,
	) ([]byte, error)
	Decode(data []byte, keys *keysDomain.KeySnapshot, now time.Time) (*tokenDomain.Token, error)
}

// TokenUseCase drives the token lifecycle.
type TokenUseCase interface {
	// Generate issues a new triple for input on behalf of siteID.
	Generate(
		ctx context.Context,
		input *identityDomain.IdentifierInput,
		siteID int64,
	) (*tokenDomain.IdentityTokens, error)

	// Validate reports whether advertisingToken was issued for input. Only the fixed
	// validation identity can ever match.
	Validate(ctx context.Context, advertisingToken string, input *identityDomain.IdentifierInput) (bool, error)

	// Refresh exchanges a refresh token. Invalid, opted-out and deprecated tokens are outcomes,
	// not errors; errors are dependency failures.
	Refresh(ctx context.Context, refreshToken string) (tokenDomain.RefreshOutcome, error)

	// RefreshAsync is Refresh with the opt-out lookup running in the background. Exactly one
	// result is delivered, then the channel is closed.
	RefreshAsync(ctx context.Context, refreshToken string) <-chan tokenDomain.RefreshResult

	// Logout records an opt-out for input.
	Logout(ctx context.Context, input *identityDomain.IdentifierInput) error
}
