package usecase

import (
	"context"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
)

type identityUseCase struct {
	salts    SaltSource
	hasher   *identityService.SaltedHasher
	maxBatch int
}

// NewIdentityUseCase creates an IdentityUseCase. maxBatch <= 0 disables the batch limit.
func NewIdentityUseCase(
	salts SaltSource,
	hasher *identityService.SaltedHasher,
	maxBatch int,
) IdentityUseCase {
	return &identityUseCase{
		salts:    salts,
		hasher:   hasher,
		maxBatch: maxBatch,
	}
}

func (i *identityUseCase) Map(
	_ context.Context,
	input *identityDomain.IdentifierInput,
) (*identityDomain.MappedIdentity, error) {
	if input == nil {
		return nil, identityDomain.ErrMissingIdentifier
	}
	if !input.Valid {
		return nil, identityDomain.ErrInvalidIdentifier
	}

	salts, err := i.salts.Get()
	if err != nil {
		return nil, err
	}
	return i.mapOne(input, salts)
}

func (i *identityUseCase) MapBatch(
	_ context.Context,
	inputs []*identityDomain.IdentifierInput,
) ([]*identityDomain.MappedIdentity, error) {
	if i.maxBatch > 0 && len(inputs) > i.maxBatch {
		return nil, identityDomain.ErrBatchTooLarge
	}

	salts, err := i.salts.Get()
	if err != nil {
		return nil, err
	}

	mapped := make([]*identityDomain.MappedIdentity, 0, len(inputs))
	for _, input := range inputs {
		if input == nil || !input.Valid {
			continue
		}
		m, err := i.mapOne(input, salts)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, m)
	}
	return mapped, nil
}

func (i *identityUseCase) ModifiedBuckets(_ context.Context, since time.Time) ([]identityDomain.SaltEntry, error) {
	salts, err := i.salts.Get()
	if err != nil {
		return nil, err
	}
	return i.hasher.ModifiedBuckets(since, salts), nil
}

func (i *identityUseCase) mapOne(
	input *identityDomain.IdentifierInput,
	salts *identityDomain.SaltSnapshot,
) (*identityDomain.MappedIdentity, error) {
	_, advertisingID, bucketID, err := i.hasher.Map(input.Normalized, salts)
	if err != nil {
		return nil, err
	}
	return &identityDomain.MappedIdentity{
		Identifier:    input.Provided,
		AdvertisingID: advertisingID,
		BucketID:      bucketID,
	}, nil
}
