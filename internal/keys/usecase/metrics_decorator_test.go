package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	"github.com/allisson/uidoperator/internal/keys/usecase"
	usecaseMocks "github.com/allisson/uidoperator/internal/keys/usecase/mocks"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func TestKeyUseCaseWithMetrics_ListKeys(t *testing.T) {
	ctx := context.Background()
	client := &authDomain.Client{SiteID: 201}

	tests := []struct {
		name   string
		keys   []*keysDomain.EncryptionKey
		err    error
		status string
	}{
		{"success", []*keysDomain.EncryptionKey{{ID: 3, SiteID: 201}}, nil, "success"},
		{"error", nil, keysDomain.ErrForbiddenSite, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockNext := &usecaseMocks.MockKeyUseCase{}
			mockMetrics := &mockBusinessMetrics{}
			uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

			mockNext.On("ListKeys", ctx, client).Return(tt.keys, tt.err).Once()
			mockMetrics.On("RecordOperation", ctx, "keys", "list", tt.status).Return().Once()
			mockMetrics.On("RecordDuration", ctx, "keys", "list", mock.AnythingOfType("time.Duration"), tt.status).
				Return().
				Once()

			keys, err := uc.ListKeys(ctx, client)

			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.keys, keys)
			mockNext.AssertExpectations(t)
			mockMetrics.AssertExpectations(t)
		})
	}
}
