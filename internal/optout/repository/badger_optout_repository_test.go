package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	optoutDomain "github.com/allisson/uidoperator/internal/optout/domain"
)

func openTestBadger(t *testing.T) *BadgerOptOutRepository {
	t.Helper()
	repo, err := OpenBadgerOptOutRepository("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestBadgerOptOutRepository_LatestMissing(t *testing.T) {
	repo := openTestBadger(t)

	_, found, err := repo.Latest(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestBadgerOptOutRepository_UpsertKeepsLatest(t *testing.T) {
	repo := openTestBadger(t)
	ctx := context.Background()
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &optoutDomain.Record{IdentityHash: "h", OptedOutAt: first}))
	require.NoError(t, repo.Upsert(ctx, &optoutDomain.Record{IdentityHash: "h", OptedOutAt: first.Add(-time.Hour)}))

	ts, found, err := repo.Latest(ctx, "h")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, first.Equal(ts))

	later := first.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &optoutDomain.Record{IdentityHash: "h", OptedOutAt: later}))

	ts, _, err = repo.Latest(ctx, "h")
	require.NoError(t, err)
	assert.True(t, later.Equal(ts))
}

func TestBadgerOptOutRepository_CanceledContext(t *testing.T) {
	repo := openTestBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := repo.Latest(ctx, "h")
	assert.ErrorIs(t, err, context.Canceled)

	err = repo.Upsert(ctx, &optoutDomain.Record{IdentityHash: "h", OptedOutAt: time.Now()})
	assert.ErrorIs(t, err, context.Canceled)
}
