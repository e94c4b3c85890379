package usecase

import (
	"context"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	"github.com/allisson/uidoperator/internal/metrics"
)

// identityUseCaseWithMetrics decorates IdentityUseCase with metrics instrumentation.
type identityUseCaseWithMetrics struct {
	next    IdentityUseCase
	metrics metrics.BusinessMetrics
}

// NewIdentityUseCaseWithMetrics wraps an IdentityUseCase with metrics recording.
func NewIdentityUseCaseWithMetrics(useCase IdentityUseCase, m metrics.BusinessMetrics) IdentityUseCase {
	return &identityUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Map records metrics for single identifier mapping.
func (i *identityUseCaseWithMetrics) Map(
	ctx context.Context,
	input *identityDomain.IdentifierInput,
) (*identityDomain.MappedIdentity, error) {
	start := time.Now()
	mapped, err := i.next.Map(ctx, input)
	i.record(ctx, "map", start, err)
	return mapped, err
}

// MapBatch records metrics for batch mapping.
func (i *identityUseCaseWithMetrics) MapBatch(
	ctx context.Context,
	inputs []*identityDomain.IdentifierInput,
) ([]*identityDomain.MappedIdentity, error) {
	start := time.Now()
	mapped, err := i.next.MapBatch(ctx, inputs)
	i.record(ctx, "map_batch", start, err)
	return mapped, err
}

// ModifiedBuckets records metrics for bucket rotation queries.
func (i *identityUseCaseWithMetrics) ModifiedBuckets(
	ctx context.Context,
	since time.Time,
) ([]identityDomain.SaltEntry, error) {
	start := time.Now()
	buckets, err := i.next.ModifiedBuckets(ctx, since)
	i.record(ctx, "buckets", start, err)
	return buckets, err
}

func (i *identityUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, i.metrics, "identity", operation, start, metrics.StatusOf(err))
}
