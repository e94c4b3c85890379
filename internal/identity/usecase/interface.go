// Package usecase implements identifier mapping and bucket rotation queries.
package usecase

import (
	"context"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

// SaltSource provides the current salt snapshot.
type SaltSource interface {
	// Get returns the current snapshot, or an unavailable error before the first load.
	Get() (*identityDomain.SaltSnapshot, error)
}

// IdentityUseCase maps identifiers to advertising ids.
type IdentityUseCase interface {
	// Map maps one identifier. Invalid identifiers are rejected with ErrInvalidIdentifier.
	Map(ctx context.Context, input *identityDomain.IdentifierInput) (*identityDomain.MappedIdentity, error)

	// MapBatch maps identifiers in order against a single snapshot. Invalid entries are
	// dropped from the result.
	MapBatch(
		ctx context.Context,
		inputs []*identityDomain.IdentifierInput,
	) ([]*identityDomain.MappedIdentity, error)

	// ModifiedBuckets lists the buckets rotated at or after since.
	ModifiedBuckets(ctx context.Context, since time.Time) ([]identityDomain.SaltEntry, error)
}
