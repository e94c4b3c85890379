package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	"github.com/allisson/uidoperator/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ListKeys records metrics for key listing.
func (k *keyUseCaseWithMetrics) ListKeys(
	ctx context.Context,
	client *authDomain.Client,
) ([]*keysDomain.EncryptionKey, error) {
	start := time.Now()
	keys, err := k.next.ListKeys(ctx, client)

	metrics.Observe(ctx, k.metrics, "keys", "list", start, metrics.StatusOf(err))

	return keys, err
}
