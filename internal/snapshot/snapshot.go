// Package snapshot publishes immutable, periodically reloaded views of external state
// (encryption keys, key sharing rules, salts and API clients).
//
// Readers call Holder.Load once per request and use that reference end-to-end, so a
// rotation that lands mid-request never mixes two generations of keys or salts.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/allisson/uidoperator/internal/errors"
	"github.com/allisson/uidoperator/internal/metrics"
)

// ErrNotLoaded is returned by Holder.Get before the first successful load.
var ErrNotLoaded = apperrors.Wrap(apperrors.ErrUnavailable, "snapshot not loaded")

// Holder owns the current snapshot of T.
type Holder[T any] struct {
	current atomic.Pointer[T]
}

// NewHolder returns an empty holder. Pass an initial value to pre-load it, which tests use.
func NewHolder[T any](initial *T) *Holder[T] {
	h := &Holder[T]{}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Load returns the current snapshot or nil.
func (h *Holder[T]) Load() *T {
	return h.current.Load()
}

// Get returns the current snapshot or ErrNotLoaded.
func (h *Holder[T]) Get() (*T, error) {
	v := h.current.Load()
	if v == nil {
		return nil, ErrNotLoaded
	}
	return v, nil
}

// Store swaps in a new snapshot.
func (h *Holder[T]) Store(v *T) {
	h.current.Store(v)
}

// Loaded reports whether a snapshot has been published.
func (h *Holder[T]) Loaded() bool {
	return h.current.Load() != nil
}

// Loader reads a complete snapshot from its source.
type Loader[T any] func(ctx context.Context) (*T, error)

// Refresher reloads one holder from its loader.
type Refresher struct {
	name     string
	reload   func(ctx context.Context) error
	interval time.Duration
	group    singleflight.Group
	logger   *slog.Logger
	metrics  metrics.BusinessMetrics
}

// NewRefresher binds holder to load. A failed reload keeps the previous snapshot.
func NewRefresher[T any](
	name string,
	holder *Holder[T],
	load Loader[T],
	interval time.Duration,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
) *Refresher {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Refresher{
		name: name,
		reload: func(ctx context.Context) error {
			v, err := load(ctx)
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("%s loader returned no snapshot", name)
			}
			holder.Store(v)
			return nil
		},
		interval: interval,
		logger:   logger,
		metrics:  businessMetrics,
	}
}

// Name returns the snapshot name used in logs and metrics.
func (r *Refresher) Name() string {
	return r.name
}

// Reload loads and publishes a new snapshot. Concurrent calls share a single load.
func (r *Refresher) Reload(ctx context.Context) error {
	start := time.Now()
	_, err, _ := r.group.Do(r.name, func() (any, error) {
		return nil, r.reload(ctx)
	})

	metrics.Observe(ctx, r.metrics, "snapshot", r.name+"_reload", start, metrics.StatusOf(err))

	if err != nil {
		return fmt.Errorf("failed to reload %s snapshot: %w", r.name, err)
	}
	return nil
}

// Start reloads on every tick until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	r.logger.Info("starting snapshot refresher",
		slog.String("snapshot", r.name),
		slog.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping snapshot refresher", slog.String("snapshot", r.name))
			return ctx.Err()
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil {
				r.logger.Error("snapshot reload failed",
					slog.String("snapshot", r.name),
					slog.Any("error", err),
				)
			}
		}
	}
}

// LoadAll performs the initial load of every refresher concurrently and returns the first error.
func LoadAll(ctx context.Context, refreshers ...*Refresher) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range refreshers {
		g.Go(func() error {
			return r.Reload(ctx)
		})
	}
	return g.Wait()
}
