package usecase

import (
	"context"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	"github.com/allisson/uidoperator/internal/metrics"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Generate records metrics for token generation.
func (t *tokenUseCaseWithMetrics) Generate(
	ctx context.Context,
	input *identityDomain.IdentifierInput,
	siteID int64,
) (*tokenDomain.IdentityTokens, error) {
	start := time.Now()
	tokens, err := t.next.Generate(ctx, input, siteID)
	t.record(ctx, "generate", start, metrics.StatusOf(err))
	return tokens, err
}

// Validate records metrics for token validation.
func (t *tokenUseCaseWithMetrics) Validate(
	ctx context.Context,
	advertisingToken string,
	input *identityDomain.IdentifierInput,
) (bool, error) {
	start := time.Now()
	ok, err := t.next.Validate(ctx, advertisingToken, input)
	t.record(ctx, "validate", start, metrics.StatusOf(err))
	return ok, err
}

// Refresh records metrics for synchronous refresh, labelled with the outcome.
func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	refreshToken string,
) (tokenDomain.RefreshOutcome, error) {
	start := time.Now()
	outcome, err := t.next.Refresh(ctx, refreshToken)
	t.record(ctx, "refresh", start, refreshStatus(outcome, err))
	return outcome, err
}

// RefreshAsync records metrics once the asynchronous result is available.
func (t *tokenUseCaseWithMetrics) RefreshAsync(
	ctx context.Context,
	refreshToken string,
) <-chan tokenDomain.RefreshResult {
	start := time.Now()
	in := t.next.RefreshAsync(ctx, refreshToken)
	out := make(chan tokenDomain.RefreshResult, 1)
	go func() {
		defer close(out)
		res, ok := <-in
		if !ok {
			return
		}
		t.record(context.WithoutCancel(ctx), "refresh_async", start, refreshStatus(res.Outcome, res.Err))
		out <- res
	}()
	return out
}

// Logout records metrics for logout.
func (t *tokenUseCaseWithMetrics) Logout(ctx context.Context, input *identityDomain.IdentifierInput) error {
	start := time.Now()
	err := t.next.Logout(ctx, input)
	t.record(ctx, "logout", start, metrics.StatusOf(err))
	return err
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	metrics.Observe(ctx, t.metrics, "token", operation, start, status)
}

func refreshStatus(outcome tokenDomain.RefreshOutcome, err error) string {
	if err != nil {
		return metrics.StatusError
	}
	return outcome.Status.String()
}
