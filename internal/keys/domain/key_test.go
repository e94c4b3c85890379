package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/uidoperator/internal/errors"
)

func TestIsValidSiteID(t *testing.T) {
	assert.True(t, IsValidSiteID(1))
	assert.True(t, IsValidSiteID(201))
	assert.False(t, IsValidSiteID(0))
	assert.False(t, IsValidSiteID(MasterKeySiteID))
	assert.False(t, IsValidSiteID(AdvertisingTokenSiteID))
}

func TestEncryptionKey_IsActive(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	key := &EncryptionKey{ActivatesAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.False(t, key.IsActive(now.Add(-time.Millisecond)))
	assert.True(t, key.IsActive(now))
	assert.True(t, key.IsActive(now.Add(59*time.Minute)))
	assert.False(t, key.IsActive(now.Add(time.Hour)))
	assert.True(t, key.IsExpired(now.Add(time.Hour)))
}

func TestKeySnapshot_ActiveKeyFor(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snapshot := NewKeySnapshot([]EncryptionKey{
		{ID: 1, SiteID: 201, ActivatesAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(time.Hour)},
		{ID: 2, SiteID: 201, ActivatesAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
		{ID: 3, SiteID: 201, ActivatesAt: now.Add(time.Hour), ExpiresAt: now.Add(2 * time.Hour)},
		{ID: 4, SiteID: 202, ActivatesAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
	})

	t.Run("Success_NewestActive", func(t *testing.T) {
		key, err := snapshot.ActiveKeyFor(201, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), key.ID)
	})

	t.Run("Error_OnlyExpiredKeys", func(t *testing.T) {
		_, err := snapshot.ActiveKeyFor(202, now)
		assert.ErrorIs(t, err, ErrNoActiveKey)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("Error_UnknownSite", func(t *testing.T) {
		_, err := snapshot.ActiveKeyFor(999, now)
		assert.ErrorIs(t, err, ErrNoActiveKey)
	})
}

func TestKeySnapshot_ActiveKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snapshot := NewKeySnapshot([]EncryptionKey{
		{ID: 9, SiteID: 201, ActivatesAt: now.Add(time.Hour), ExpiresAt: now.Add(2 * time.Hour)},
		{ID: 4, SiteID: 202, ActivatesAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: 1, SiteID: 201, ActivatesAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
	})

	keys := snapshot.ActiveKeys(now)

	require.Len(t, keys, 2)
	assert.Equal(t, int64(1), keys[0].ID)
	assert.Equal(t, int64(9), keys[1].ID)
	assert.Equal(t, 3, snapshot.Len())

	_, ok := snapshot.Get(4)
	assert.True(t, ok)
	_, ok = snapshot.Get(5)
	assert.False(t, ok)
}

func TestKeyACL_Allows(t *testing.T) {
	white := NewKeyACL(301, ACLWhitelist, []int64{201, 202})
	black := NewKeyACL(302, ACLBlacklist, []int64{201})

	assert.True(t, white.Allows(201))
	assert.False(t, white.Allows(203))
	assert.False(t, black.Allows(201))
	assert.True(t, black.Allows(203))
}

func TestParseACLMode(t *testing.T) {
	mode, err := ParseACLMode("blacklist")
	require.NoError(t, err)
	assert.Equal(t, ACLBlacklist, mode)

	_, err = ParseACLMode("graylist")
	assert.Error(t, err)
}
