// Package mocks provides mock implementations of the identity use cases for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

// MockIdentityUseCase is a mock implementation of IdentityUseCase.
type MockIdentityUseCase struct {
	mock.Mock
}

// Map mocks the Map method.
func (m *MockIdentityUseCase) Map(
	ctx context.Context,
	input *identityDomain.IdentifierInput,
) (*identityDomain.MappedIdentity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.MappedIdentity), args.Error(1)
}

// MapBatch mocks the MapBatch method.
func (m *MockIdentityUseCase) MapBatch(
	ctx context.Context,
	inputs []*identityDomain.IdentifierInput,
) ([]*identityDomain.MappedIdentity, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.MappedIdentity), args.Error(1)
}

// ModifiedBuckets mocks the ModifiedBuckets method.
func (m *MockIdentityUseCase) ModifiedBuckets(
	ctx context.Context,
	since time.Time,
) ([]identityDomain.SaltEntry, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identityDomain.SaltEntry), args.Error(1)
}
