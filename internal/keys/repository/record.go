// Package repository loads encryption keys and key sharing rules into snapshots.
//
// Keys and rules are read in bulk and never written by this service; rotation happens in the
// external store and reaches the service through periodic reloads. Two sources exist: SQL tables
// (PostgreSQL or MySQL) and YAML files for operators running without a database.
//
// Stored secrets may be wrapped by a KMS keeper. They are unwrapped while loading so that a
// snapshot only ever holds raw key bytes.
package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"
	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// keyRecord is a key as stored, before its secret is unwrapped.
type keyRecord struct {
	ID          int64
	SiteID      int64
	Secret      []byte
	Algorithm   string
	CreatedAt   time.Time
	ActivatesAt time.Time
	ExpiresAt   time.Time
}

func (r keyRecord) toKey(
	ctx context.Context,
	unwrapper cryptoService.SecretUnwrapper,
) (keysDomain.EncryptionKey, error) {
	alg, err := cryptoDomain.ParseAlgorithm(r.Algorithm)
	if err != nil {
		return keysDomain.EncryptionKey{}, fmt.Errorf("key %d: %w", r.ID, err)
	}
	secret, err := unwrapper.Unwrap(ctx, r.Secret)
	if err != nil {
		return keysDomain.EncryptionKey{}, fmt.Errorf("key %d: %w", r.ID, err)
	}
	if !cryptoDomain.ValidKeySize(alg, len(secret)) {
		return keysDomain.EncryptionKey{}, fmt.Errorf("key %d: %w", r.ID, cryptoDomain.ErrInvalidKeySize)
	}
	if !r.ExpiresAt.After(r.ActivatesAt) {
		return keysDomain.EncryptionKey{}, fmt.Errorf("key %d: expires before it activates", r.ID)
	}

	return keysDomain.EncryptionKey{
		ID:          r.ID,
		SiteID:      r.SiteID,
		Secret:      secret,
		Algorithm:   alg,
		CreatedAt:   r.CreatedAt.UTC(),
		ActivatesAt: r.ActivatesAt.UTC(),
		ExpiresAt:   r.ExpiresAt.UTC(),
	}, nil
}

func buildKeySnapshot(
	ctx context.Context,
	unwrapper cryptoService.SecretUnwrapper,
	records []keyRecord,
) (*keysDomain.KeySnapshot, error) {
	keys := make([]keysDomain.EncryptionKey, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate key id %d", r.ID)
		}
		seen[r.ID] = struct{}{}

		key, err := r.toKey(ctx, unwrapper)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keysDomain.NewKeySnapshot(keys), nil
}

// parseSites reads a comma separated list of site ids. Blank input is an empty list.
func parseSites(s string) ([]int64, error) {
	sites := make([]int64, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid site id %q: %w", part, err)
		}
		sites = append(sites, id)
	}
	return sites, nil
}
