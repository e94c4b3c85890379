// Package usecase lists the encryption keys a client may use to decrypt tokens itself.
package usecase

import (
	"context"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// KeySource provides the current key snapshot.
type KeySource interface {
	Get() (*keysDomain.KeySnapshot, error)
}

// ACLSource provides the current key sharing rules.
type ACLSource interface {
	Get() (*keysDomain.ACLSnapshot, error)
}

// KeyUseCase defines the key listing operation.
type KeyUseCase interface {
	// ListKeys returns every unexpired key client may access, ordered by id. Clients without a
	// valid tenant site get ErrForbiddenSite.
	ListKeys(ctx context.Context, client *authDomain.Client) ([]*keysDomain.EncryptionKey, error)
}
