// Package mocks provides mock implementations of the key use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// MockKeyUseCase is a mock implementation of KeyUseCase.
type MockKeyUseCase struct {
	mock.Mock
}

// ListKeys mocks the ListKeys method.
func (m *MockKeyUseCase) ListKeys(
	ctx context.Context,
	client *authDomain.Client,
) ([]*keysDomain.EncryptionKey, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.EncryptionKey), args.Error(1)
}
