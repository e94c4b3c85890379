// Package repository loads salt snapshots from SQL databases or YAML files.
package repository

import (
	"errors"
	"fmt"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

var errMissingFirstLevelSalt = errors.New("first level salt is not configured")

// buildSaltSnapshot checks loaded salts and freezes them into a snapshot. Entries keep their
// load order.
func buildSaltSnapshot(firstLevelSalt string, entries []identityDomain.SaltEntry) (*identityDomain.SaltSnapshot, error) {
	if firstLevelSalt == "" {
		return nil, errMissingFirstLevelSalt
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.BucketID == "" || e.Salt == "" {
			return nil, fmt.Errorf("salt %d: bucket id and salt are required", e.ID)
		}
		if _, dup := seen[e.BucketID]; dup {
			return nil, fmt.Errorf("salt %d: duplicate bucket id %q", e.ID, e.BucketID)
		}
		seen[e.BucketID] = struct{}{}
	}

	return &identityDomain.SaltSnapshot{
		FirstLevelSalt: firstLevelSalt,
		Entries:        entries,
	}, nil
}
