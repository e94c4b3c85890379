package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	keysService "github.com/allisson/uidoperator/internal/keys/service"
)

type keyUseCase struct {
	keys KeySource
	acls ACLSource
	now  func() time.Time
}

// NewKeyUseCase creates a KeyUseCase.
func NewKeyUseCase(keys KeySource, acls ACLSource) KeyUseCase {
	return &keyUseCase{
		keys: keys,
		acls: acls,
		now:  time.Now,
	}
}

func (k *keyUseCase) ListKeys(
	_ context.Context,
	client *authDomain.Client,
) ([]*keysDomain.EncryptionKey, error) {
	if client == nil || !keysDomain.IsValidSiteID(client.SiteID) {
		return nil, keysDomain.ErrForbiddenSite
	}

	keys, err := k.keys.Get()
	if err != nil {
		return nil, err
	}
	acls, err := k.acls.Get()
	if err != nil {
		return nil, err
	}

	return keysService.Accessible(client, keys.ActiveKeys(k.now().UTC()), acls), nil
}
