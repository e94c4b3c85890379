// Package service implements the opt-out gate consulted before any token is reissued, and the
// background writer that records new opt-outs.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/uidoperator/internal/metrics"
	optoutDomain "github.com/allisson/uidoperator/internal/optout/domain"
	"github.com/allisson/uidoperator/internal/optout/publisher"
)

// Store is the persistent opt-out store.
type Store interface {
	Latest(ctx context.Context, identityHash string) (time.Time, bool, error)
	Upsert(ctx context.Context, rec *optoutDomain.Record) error
}

// maxRetryBackoff caps the delay between write attempts of one opt-out.
const maxRetryBackoff = time.Minute

// GateConfig holds the gate settings.
type GateConfig struct {
	LookupTimeout time.Duration
	QueueSize     int
	// WriteMaxRetries is how many times a failed write is retried before it is abandoned.
	WriteMaxRetries int
	// RetryInterval is the first retry delay. It doubles on every further retry.
	RetryInterval time.Duration
	// MaxPending bounds the opt-outs accepted but not yet persisted.
	MaxPending int
}

// Gate answers "has this identity opted out" and queues new opt-outs.
//
// Lookups fail closed: a timeout or store error is returned as ErrOptOutUnavailable and never
// reported as "not opted out". Opt-outs queued by this process are visible to lookups until
// they reach the store, including while their write is being retried.
type Gate struct {
	store      Store
	publisher  publisher.Publisher
	timeout    time.Duration
	queue      chan *optoutDomain.Record
	maxRetries int
	retryEvery time.Duration
	maxPending int
	logger     *slog.Logger
	metrics    metrics.BusinessMetrics
	now        func() time.Time

	mu      sync.Mutex
	pending map[string]time.Time

	// failed is only touched by the writer goroutine.
	failed map[string]*failedWrite
}

// failedWrite is a record waiting for another write attempt.
type failedWrite struct {
	rec         *optoutDomain.Record
	retries     int
	nextAttempt time.Time
}

// NewGate creates a Gate. Start must be running for queued opt-outs to be persisted.
func NewGate(
	store Store,
	pub publisher.Publisher,
	cfg GateConfig,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
) *Gate {
	if pub == nil {
		pub = publisher.NewNoopPublisher()
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	queueSize := max(cfg.QueueSize, 1)
	retryEvery := cfg.RetryInterval
	if retryEvery <= 0 {
		retryEvery = time.Second
	}
	maxPending := cfg.MaxPending
	if maxPending <= 0 {
		maxPending = 4 * queueSize
	}
	return &Gate{
		store:      store,
		publisher:  pub,
		timeout:    cfg.LookupTimeout,
		queue:      make(chan *optoutDomain.Record, queueSize),
		maxRetries: max(cfg.WriteMaxRetries, 0),
		retryEvery: retryEvery,
		maxPending: maxPending,
		logger:     logger,
		metrics:    businessMetrics,
		now:        time.Now,
		pending:    make(map[string]time.Time),
		failed:     make(map[string]*failedWrite),
	}
}

type lookupResult struct {
	optedOutAt time.Time
	found      bool
	err        error
}

// LatestOptOut returns the latest opt-out time of identityHash. The lookup is bounded by the
// configured timeout even when the store ignores cancellation.
func (g *Gate) LatestOptOut(ctx context.Context, identityHash string) (time.Time, bool, error) {
	if ts, ok := g.pendingOptOut(identityHash); ok {
		return ts, true, nil
	}

	start := time.Now()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	done := make(chan lookupResult, 1)
	go func() {
		ts, found, err := g.store.Latest(ctx, identityHash)
		done <- lookupResult{optedOutAt: ts, found: found, err: err}
	}()

	var res lookupResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	metrics.Observe(ctx, g.metrics, "optout", "lookup", start, metrics.StatusOf(res.err))

	if res.err != nil {
		g.logger.Error("opt-out lookup failed", slog.Any("error", res.err))
		return time.Time{}, false, fmt.Errorf("%w: %v", optoutDomain.ErrOptOutUnavailable, res.err)
	}
	return res.optedOutAt, res.found, nil
}

// Invalidate queues an opt-out of identityHash at the current time. It does not wait for the
// write. A full queue is reported as ErrWriterQueueFull and too many unpersisted opt-outs as
// ErrTooManyPending.
func (g *Gate) Invalidate(_ context.Context, identityHash string) error {
	if identityHash == "" {
		return optoutDomain.ErrEmptyIdentityHash
	}
	rec := &optoutDomain.Record{IdentityHash: identityHash, OptedOutAt: g.now().UTC()}

	g.mu.Lock()
	prev, had := g.pending[identityHash]
	if !had && len(g.pending) >= g.maxPending {
		g.mu.Unlock()
		return optoutDomain.ErrTooManyPending
	}
	g.pending[identityHash] = rec.OptedOutAt
	g.mu.Unlock()

	select {
	case g.queue <- rec:
		return nil
	default:
		g.mu.Lock()
		if ts, ok := g.pending[identityHash]; ok && ts.Equal(rec.OptedOutAt) {
			if had {
				g.pending[identityHash] = prev
			} else {
				delete(g.pending, identityHash)
			}
		}
		g.mu.Unlock()
		return optoutDomain.ErrWriterQueueFull
	}
}

func (g *Gate) pendingOptOut(identityHash string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ts, ok := g.pending[identityHash]
	return ts, ok
}

// persisted drops the pending entry of rec unless a newer opt-out was queued since.
func (g *Gate) persisted(rec *optoutDomain.Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ts, ok := g.pending[rec.IdentityHash]; ok && !ts.After(rec.OptedOutAt) {
		delete(g.pending, rec.IdentityHash)
	}
}

// Start persists queued opt-outs until ctx is canceled, retrying failed writes with backoff.
// Records still queued or waiting for a retry at that point get one more attempt with a
// context detached from ctx and bounded by the lookup timeout.
func (g *Gate) Start(ctx context.Context) error {
	g.logger.Info("starting opt-out writer",
		slog.Int("queue_size", cap(g.queue)),
		slog.Int("max_retries", g.maxRetries),
		slog.Duration("retry_interval", g.retryEvery),
	)

	ticker := time.NewTicker(g.retryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.drain(context.WithoutCancel(ctx))
			g.logger.Info("stopping opt-out writer")
			return ctx.Err()
		case rec := <-g.queue:
			g.write(ctx, rec, 0)
		case <-ticker.C:
			g.retryDue(ctx, time.Now())
		}
	}
}

func (g *Gate) retryDue(ctx context.Context, now time.Time) {
	for hash, fw := range g.failed {
		if now.Before(fw.nextAttempt) {
			continue
		}
		delete(g.failed, hash)
		g.write(ctx, fw.rec, fw.retries)
	}
}

func (g *Gate) drain(ctx context.Context) {
	for queued := true; queued; {
		select {
		case rec := <-g.queue:
			g.writeBounded(ctx, rec, 0)
		default:
			queued = false
		}
	}

	retries := g.failed
	g.failed = make(map[string]*failedWrite)
	for _, fw := range retries {
		g.writeBounded(ctx, fw.rec, fw.retries)
	}

	if n := len(g.failed); n > 0 {
		g.logger.Error("opt-outs not persisted at shutdown", slog.Int("count", n))
	}
}

func (g *Gate) writeBounded(ctx context.Context, rec *optoutDomain.Record, retries int) {
	writeCtx, cancel := context.WithTimeout(ctx, g.drainTimeout())
	defer cancel()
	g.write(writeCtx, rec, retries)
}

func (g *Gate) drainTimeout() time.Duration {
	if g.timeout > 0 {
		return g.timeout
	}
	return 5 * time.Second
}

// write persists rec and publishes its event. retries is the number of earlier failed attempts.
func (g *Gate) write(ctx context.Context, rec *optoutDomain.Record, retries int) {
	start := time.Now()
	err := g.store.Upsert(ctx, rec)

	metrics.Observe(ctx, g.metrics, "optout", "record", start, metrics.StatusOf(err))

	if err != nil {
		g.scheduleRetry(rec, retries+1, err)
		return
	}

	if fw, ok := g.failed[rec.IdentityHash]; ok && !fw.rec.OptedOutAt.After(rec.OptedOutAt) {
		delete(g.failed, rec.IdentityHash)
	}
	g.persisted(rec)

	if err := g.publisher.Publish(ctx, rec.IdentityHash, optoutDomain.NewRecordedEvent(rec)); err != nil {
		g.logger.Warn("failed to publish opt-out event", slog.Any("error", err))
	}
}

// scheduleRetry keeps rec for another attempt. A record out of retries stays pending, so this
// process keeps honoring it, but is no longer written.
func (g *Gate) scheduleRetry(rec *optoutDomain.Record, retries int, cause error) {
	if retries > g.maxRetries {
		g.logger.Error("giving up on opt-out write",
			slog.Int("attempts", retries),
			slog.Any("error", cause),
		)
		return
	}

	if fw, ok := g.failed[rec.IdentityHash]; ok && fw.rec.OptedOutAt.After(rec.OptedOutAt) {
		return
	}
	delay := g.backoff(retries)
	g.failed[rec.IdentityHash] = &failedWrite{
		rec:         rec,
		retries:     retries,
		nextAttempt: time.Now().Add(delay),
	}
	g.logger.Warn("failed to persist opt-out, will retry",
		slog.Int("retry", retries),
		slog.Duration("backoff", delay),
		slog.Any("error", cause),
	)
}

func (g *Gate) backoff(retries int) time.Duration {
	d := g.retryEvery
	for i := 1; i < retries && d < maxRetryBackoff; i++ {
		d *= 2
	}
	return min(d, maxRetryBackoff)
}

// Close closes the publisher.
func (g *Gate) Close() error {
	return g.publisher.Close()
}
