// Package usecase implements API client registration and request authentication.
package usecase

import (
	"context"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
)

// ClientRepository persists new clients.
type ClientRepository interface {
	Create(ctx context.Context, client *authDomain.Client) error
}

// ClientSource provides the current client snapshot.
type ClientSource interface {
	Get() (*authDomain.ClientSnapshot, error)
}

// ClientUseCase registers API clients.
type ClientUseCase interface {
	// Create registers a client and returns its API key. The key is only available here.
	Create(
		ctx context.Context,
		createClientInput *authDomain.CreateClientInput,
	) (*authDomain.CreateClientOutput, error)
}

// AuthUseCase resolves API keys to clients.
type AuthUseCase interface {
	// Authenticate returns the client owning apiKey. Unknown, malformed and mismatched keys
	// all yield ErrInvalidAPIKey so callers cannot probe which part was wrong.
	Authenticate(ctx context.Context, apiKey string) (*authDomain.Client, error)
}
