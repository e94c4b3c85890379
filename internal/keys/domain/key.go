// Package domain defines encryption keys, key snapshots and key sharing rules.
//
// Keys are produced by an external authority and loaded into immutable snapshots. A key belongs
// to a site; two site ids are reserved for operator-wide keys.
package domain

import (
	"sort"
	"time"

	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"
)

const (
	// MasterKeySiteID owns the operator-internal key used for user and refresh tokens when
	// site keys are disabled. It is never listed to clients.
	MasterKeySiteID int64 = -1

	// AdvertisingTokenSiteID owns the network-wide key advertising tokens are encrypted with.
	// Every id_reader can see it.
	AdvertisingTokenSiteID int64 = 2
)

// IsValidSiteID reports whether siteID identifies a tenant site.
func IsValidSiteID(siteID int64) bool {
	return siteID > 0 && siteID != AdvertisingTokenSiteID
}

// EncryptionKey is a symmetric key with an activation window.
type EncryptionKey struct {
	ID          int64
	SiteID      int64
	Secret      []byte //nolint:gosec // raw key material, never logged
	Algorithm   cryptoDomain.Algorithm
	CreatedAt   time.Time
	ActivatesAt time.Time
	ExpiresAt   time.Time
}

// IsActive reports whether the key may be used at now: ActivatesAt <= now < ExpiresAt.
func (k *EncryptionKey) IsActive(now time.Time) bool {
	return !now.Before(k.ActivatesAt) && now.Before(k.ExpiresAt)
}

// IsExpired reports whether the key can no longer decrypt anything at now.
func (k *EncryptionKey) IsExpired(now time.Time) bool {
	return !now.Before(k.ExpiresAt)
}

// KeySnapshot is an immutable set of keys indexed by id.
type KeySnapshot struct {
	byID   map[int64]*EncryptionKey
	sorted []*EncryptionKey
}

// NewKeySnapshot builds a snapshot. Later duplicates of an id replace earlier ones.
func NewKeySnapshot(keys []EncryptionKey) *KeySnapshot {
	s := &KeySnapshot{byID: make(map[int64]*EncryptionKey, len(keys))}
	for i := range keys {
		k := keys[i]
		s.byID[k.ID] = &k
	}
	s.sorted = make([]*EncryptionKey, 0, len(s.byID))
	for _, k := range s.byID {
		s.sorted = append(s.sorted, k)
	}
	sort.Slice(s.sorted, func(i, j int) bool { return s.sorted[i].ID < s.sorted[j].ID })
	return s
}

// Len returns the number of keys in the snapshot.
func (s *KeySnapshot) Len() int {
	return len(s.sorted)
}

// Get returns the key with the given id.
func (s *KeySnapshot) Get(id int64) (*EncryptionKey, bool) {
	k, ok := s.byID[id]
	return k, ok
}

// ActiveKeyFor returns the most recently activated key of siteID that is active at now.
func (s *KeySnapshot) ActiveKeyFor(siteID int64, now time.Time) (*EncryptionKey, error) {
	var best *EncryptionKey
	for _, k := range s.sorted {
		if k.SiteID != siteID || !k.IsActive(now) {
			continue
		}
		if best == nil || k.ActivatesAt.After(best.ActivatesAt) ||
			(k.ActivatesAt.Equal(best.ActivatesAt) && k.ID > best.ID) {
			best = k
		}
	}
	if best == nil {
		return nil, ErrNoActiveKey
	}
	return best, nil
}

// ActiveKeys returns every key that has not expired at now, ordered by id. Keys that are not
// yet active are included so consumers can prepare for rotation.
func (s *KeySnapshot) ActiveKeys(now time.Time) []*EncryptionKey {
	keys := make([]*EncryptionKey, 0, len(s.sorted))
	for _, k := range s.sorted {
		if !k.IsExpired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}
