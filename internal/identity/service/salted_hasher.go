package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

// SaltedHasher derives first-level hashes and advertising ids from a salt snapshot.
// It is stateless; every method is a pure function of its arguments.
type SaltedHasher struct{}

// NewSaltedHasher creates a SaltedHasher.
func NewSaltedHasher() *SaltedHasher {
	return &SaltedHasher{}
}

// FirstLevelHash returns base64(sha256(identityHash || firstLevelSalt)).
func (h *SaltedHasher) FirstLevelHash(identityHash string, salts *identityDomain.SaltSnapshot) string {
	return hashToBase64(identityHash + salts.FirstLevelSalt)
}

// Bucket selects the rotation bucket for a first-level hash. The index is the first four
// bytes of sha256(firstLevelHash), big endian, modulo the number of buckets.
func (h *SaltedHasher) Bucket(
	firstLevelHash string,
	salts *identityDomain.SaltSnapshot,
) (identityDomain.SaltEntry, error) {
	if salts == nil || len(salts.Entries) == 0 {
		return identityDomain.SaltEntry{}, identityDomain.ErrSaltsUnavailable
	}
	sum := sha256.Sum256([]byte(firstLevelHash))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(salts.Entries))
	return salts.Entries[idx], nil
}

// AdvertisingID returns base64(sha256(firstLevelHash || bucket salt)) and the bucket id.
func (h *SaltedHasher) AdvertisingID(
	firstLevelHash string,
	salts *identityDomain.SaltSnapshot,
) (advertisingID, bucketID string, err error) {
	bucket, err := h.Bucket(firstLevelHash, salts)
	if err != nil {
		return "", "", err
	}
	return hashToBase64(firstLevelHash + bucket.Salt), bucket.BucketID, nil
}

// Map runs the full derivation for a normalized identity hash.
func (h *SaltedHasher) Map(
	identityHash string,
	salts *identityDomain.SaltSnapshot,
) (firstLevelHash, advertisingID, bucketID string, err error) {
	if salts == nil {
		return "", "", "", identityDomain.ErrSaltsUnavailable
	}
	firstLevelHash = h.FirstLevelHash(identityHash, salts)
	advertisingID, bucketID, err = h.AdvertisingID(firstLevelHash, salts)
	if err != nil {
		return "", "", "", err
	}
	return firstLevelHash, advertisingID, bucketID, nil
}

// ModifiedBuckets returns the buckets whose salt changed at or after since, in snapshot order.
func (h *SaltedHasher) ModifiedBuckets(
	since time.Time,
	salts *identityDomain.SaltSnapshot,
) []identityDomain.SaltEntry {
	modified := make([]identityDomain.SaltEntry, 0)
	if salts == nil {
		return modified
	}
	for _, e := range salts.Entries {
		if !e.LastUpdated.Before(since) {
			modified = append(modified, e)
		}
	}
	return modified
}

func hashToBase64(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}
