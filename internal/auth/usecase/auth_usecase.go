package usecase

import (
	"context"
	"crypto/subtle"
	"sync"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authService "github.com/allisson/uidoperator/internal/auth/service"
)

type authUseCase struct {
	clients       ClientSource
	apiKeyService authService.APIKeyService

	// verified maps an API key fingerprint to the stored hash it last matched.
	verified sync.Map
}

// NewAuthUseCase creates an AuthUseCase.
func NewAuthUseCase(clients ClientSource, apiKeyService authService.APIKeyService) AuthUseCase {
	return &authUseCase{
		clients:       clients,
		apiKeyService: apiKeyService,
	}
}

func (a *authUseCase) Authenticate(_ context.Context, apiKey string) (*authDomain.Client, error) {
	prefix, secret, err := a.apiKeyService.Parse(apiKey)
	if err != nil {
		return nil, authDomain.ErrInvalidAPIKey
	}

	snapshot, err := a.clients.Get()
	if err != nil {
		return nil, err
	}
	client, ok := snapshot.ByPrefix(prefix)
	if !ok {
		return nil, authDomain.ErrInvalidAPIKey
	}
	if client.Disabled {
		return nil, authDomain.ErrClientDisabled
	}

	fingerprint := a.apiKeyService.Fingerprint(apiKey)
	if cached, ok := a.verified.Load(fingerprint); ok {
		if subtle.ConstantTimeCompare([]byte(cached.(string)), []byte(client.KeyHash)) == 1 {
			return client, nil
		}
		a.verified.Delete(fingerprint)
	}

	if !a.apiKeyService.Verify(secret, client.KeyHash) {
		return nil, authDomain.ErrInvalidAPIKey
	}
	a.verified.Store(fingerprint, client.KeyHash)
	return client, nil
}
