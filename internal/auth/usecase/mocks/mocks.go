// Package mocks provides mock implementations of the auth use cases and collaborators for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authService "github.com/allisson/uidoperator/internal/auth/service"
)

// MockAuthUseCase is a mock implementation of AuthUseCase.
type MockAuthUseCase struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method.
func (m *MockAuthUseCase) Authenticate(ctx context.Context, apiKey string) (*authDomain.Client, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Client), args.Error(1)
}

// MockClientUseCase is a mock implementation of ClientUseCase.
type MockClientUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockClientUseCase) Create(
	ctx context.Context,
	createClientInput *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	args := m.Called(ctx, createClientInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateClientOutput), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

// MockAPIKeyService is a mock implementation of APIKeyService.
type MockAPIKeyService struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockAPIKeyService) Generate() (*authService.GeneratedAPIKey, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authService.GeneratedAPIKey), args.Error(1)
}

// HashSecret mocks the HashSecret method.
func (m *MockAPIKeyService) HashSecret(secret string) (string, error) {
	args := m.Called(secret)
	return args.String(0), args.Error(1)
}

// Parse mocks the Parse method.
func (m *MockAPIKeyService) Parse(apiKey string) (string, string, error) {
	args := m.Called(apiKey)
	return args.String(0), args.String(1), args.Error(2)
}

// Verify mocks the Verify method.
func (m *MockAPIKeyService) Verify(secret, hash string) bool {
	args := m.Called(secret, hash)
	return args.Bool(0)
}

// Fingerprint mocks the Fingerprint method.
func (m *MockAPIKeyService) Fingerprint(apiKey string) string {
	args := m.Called(apiKey)
	return args.String(0)
}
