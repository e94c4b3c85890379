// Package mocks provides mock implementations of the token use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockTokenUseCase) Generate(
	ctx context.Context,
	input *identityDomain.IdentifierInput,
	siteID int64,
) (*tokenDomain.IdentityTokens, error) {
	args := m.Called(ctx, input, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.IdentityTokens), args.Error(1)
}

// Validate mocks the Validate method.
func (m *MockTokenUseCase) Validate(
	ctx context.Context,
	advertisingToken string,
	input *identityDomain.IdentifierInput,
) (bool, error) {
	args := m.Called(ctx, advertisingToken, input)
	return args.Bool(0), args.Error(1)
}

// Refresh mocks the Refresh method.
func (m *MockTokenUseCase) Refresh(ctx context.Context, refreshToken string) (tokenDomain.RefreshOutcome, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(tokenDomain.RefreshOutcome), args.Error(1)
}

// RefreshAsync mocks the RefreshAsync method. The mocked result is delivered on a closed,
// buffered channel.
func (m *MockTokenUseCase) RefreshAsync(ctx context.Context, refreshToken string) <-chan tokenDomain.RefreshResult {
	args := m.Called(ctx, refreshToken)
	out := make(chan tokenDomain.RefreshResult, 1)
	out <- args.Get(0).(tokenDomain.RefreshResult)
	close(out)
	return out
}

// Logout mocks the Logout method.
func (m *MockTokenUseCase) Logout(ctx context.Context, input *identityDomain.IdentifierInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}
