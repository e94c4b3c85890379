package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

func testSalts(n int, updated time.Time) *identityDomain.SaltSnapshot {
	entries := make([]identityDomain.SaltEntry, n)
	for i := range entries {
		entries[i] = identityDomain.SaltEntry{
			ID:          int64(i + 1),
			BucketID:    fmt.Sprintf("bucket-%d", i+1),
			Salt:        fmt.Sprintf("salt-%d", i+1),
			LastUpdated: updated.Add(time.Duration(i) * time.Hour),
		}
	}
	return &identityDomain.SaltSnapshot{FirstLevelSalt: "first-level-salt", Entries: entries}
}

func TestSaltedHasher_FirstLevelHash(t *testing.T) {
	h := NewSaltedHasher()
	salts := testSalts(3, time.Now())
	identity := emailHash("test@uid2.com")

	sum := sha256.Sum256([]byte(identity + "first-level-salt"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), h.FirstLevelHash(identity, salts))
}

func TestSaltedHasher_AdvertisingID(t *testing.T) {
	h := NewSaltedHasher()
	salts := testSalts(5, time.Now())
	firstLevel := h.FirstLevelHash(emailHash("test@uid2.com"), salts)

	sum := sha256.Sum256([]byte(firstLevel))
	idx := binary.BigEndian.Uint32(sum[:4]) % 5
	bucket := salts.Entries[idx]
	expected := sha256.Sum256([]byte(firstLevel + bucket.Salt))

	advertisingID, bucketID, err := h.AdvertisingID(firstLevel, salts)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(expected[:]), advertisingID)
	assert.Equal(t, bucket.BucketID, bucketID)
}

func TestSaltedHasher_Deterministic(t *testing.T) {
	h := NewSaltedHasher()
	salts := testSalts(16, time.Now())

	for _, email := range []string{"a@example.com", "b@example.com", "test@uid2.com"} {
		identity := emailHash(email)
		f1, a1, b1, err := h.Map(identity, salts)
		require.NoError(t, err)
		f2, a2, b2, err := h.Map(identity, salts)
		require.NoError(t, err)

		assert.Equal(t, f1, f2)
		assert.Equal(t, a1, a2)
		assert.Equal(t, b1, b2)
	}
}

func TestSaltedHasher_RotationChangesAdvertisingID(t *testing.T) {
	h := NewSaltedHasher()
	salts := testSalts(1, time.Now())
	identity := emailHash("test@uid2.com")

	_, before, _, err := h.Map(identity, salts)
	require.NoError(t, err)

	rotated := &identityDomain.SaltSnapshot{
		FirstLevelSalt: salts.FirstLevelSalt,
		Entries: []identityDomain.SaltEntry{
			{ID: 1, BucketID: "bucket-1", Salt: "rotated", LastUpdated: time.Now()},
		},
	}
	_, after, _, err := h.Map(identity, rotated)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestSaltedHasher_EmptySnapshot(t *testing.T) {
	h := NewSaltedHasher()

	_, _, err := h.AdvertisingID("x", &identityDomain.SaltSnapshot{})
	assert.ErrorIs(t, err, identityDomain.ErrSaltsUnavailable)

	_, _, _, err = h.Map("x", nil)
	assert.ErrorIs(t, err, identityDomain.ErrSaltsUnavailable)
}

func TestSaltedHasher_ModifiedBuckets(t *testing.T) {
	h := NewSaltedHasher()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	salts := testSalts(4, base)

	modified := h.ModifiedBuckets(base.Add(2*time.Hour), salts)
	require.Len(t, modified, 2)
	assert.Equal(t, "bucket-3", modified[0].BucketID)
	assert.Equal(t, "bucket-4", modified[1].BucketID)

	assert.Len(t, h.ModifiedBuckets(base, salts), 4)
	assert.Empty(t, h.ModifiedBuckets(base.Add(24*time.Hour), salts))
	assert.NotNil(t, h.ModifiedBuckets(base, nil))
}
