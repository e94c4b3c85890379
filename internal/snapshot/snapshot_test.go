package snapshot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/uidoperator/internal/errors"
)

type testSnapshot struct {
	Version int
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHolder(t *testing.T) {
	h := NewHolder[testSnapshot](nil)
	assert.False(t, h.Loaded())
	assert.Nil(t, h.Load())

	_, err := h.Get()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	h.Store(&testSnapshot{Version: 1})
	assert.True(t, h.Loaded())

	v, err := h.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version)
}

func TestHolder_CapturedReferenceIsStable(t *testing.T) {
	h := NewHolder(&testSnapshot{Version: 1})

	captured := h.Load()
	h.Store(&testSnapshot{Version: 2})

	assert.Equal(t, 1, captured.Version)
	assert.Equal(t, 2, h.Load().Version)
}

func TestRefresher_Reload(t *testing.T) {
	ctx := context.Background()
	h := NewHolder[testSnapshot](nil)
	version := 0

	r := NewRefresher("test", h, func(ctx context.Context) (*testSnapshot, error) {
		version++
		return &testSnapshot{Version: version}, nil
	}, time.Minute, discardLogger(), nil)

	require.NoError(t, r.Reload(ctx))
	assert.Equal(t, 1, h.Load().Version)
	assert.Equal(t, "test", r.Name())
}

func TestRefresher_FailedReloadKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(&testSnapshot{Version: 7})

	r := NewRefresher("test", h, func(ctx context.Context) (*testSnapshot, error) {
		return nil, errors.New("store down")
	}, time.Minute, discardLogger(), nil)

	err := r.Reload(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
	assert.Equal(t, 7, h.Load().Version)
}

func TestRefresher_NilSnapshotIsAnError(t *testing.T) {
	h := NewHolder[testSnapshot](nil)
	r := NewRefresher("test", h, func(ctx context.Context) (*testSnapshot, error) {
		return nil, nil
	}, time.Minute, discardLogger(), nil)

	assert.Error(t, r.Reload(context.Background()))
	assert.False(t, h.Loaded())
}

func TestRefresher_ConcurrentReloadsShareOneLoad(t *testing.T) {
	h := NewHolder[testSnapshot](nil)
	var calls atomic.Int32
	release := make(chan struct{})

	r := NewRefresher("test", h, func(ctx context.Context) (*testSnapshot, error) {
		calls.Add(1)
		<-release
		return &testSnapshot{Version: 1}, nil
	}, time.Minute, discardLogger(), nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Reload(context.Background())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.True(t, h.Loaded())
}

func TestRefresher_StartStopsOnCancel(t *testing.T) {
	h := NewHolder[testSnapshot](nil)
	var calls atomic.Int32

	r := NewRefresher("test", h, func(ctx context.Context) (*testSnapshot, error) {
		calls.Add(1)
		return &testSnapshot{Version: int(calls.Load())}, nil
	}, 10*time.Millisecond, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	a := NewHolder[testSnapshot](nil)
	b := NewHolder[testSnapshot](nil)

	ra := NewRefresher("a", a, func(ctx context.Context) (*testSnapshot, error) {
		return &testSnapshot{Version: 1}, nil
	}, time.Minute, discardLogger(), nil)
	rb := NewRefresher("b", b, func(ctx context.Context) (*testSnapshot, error) {
		return &testSnapshot{Version: 2}, nil
	}, time.Minute, discardLogger(), nil)

	require.NoError(t, LoadAll(ctx, ra, rb))
	assert.True(t, a.Loaded())
	assert.True(t, b.Loaded())

	rc := NewRefresher("c", NewHolder[testSnapshot](nil), func(ctx context.Context) (*testSnapshot, error) {
		return nil, errors.New("boom")
	}, time.Minute, discardLogger(), nil)
	assert.Error(t, LoadAll(ctx, ra, rc))
}
