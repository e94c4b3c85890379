package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens keepers for the configured KMS provider.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for keyURI.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper using keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// SecretUnwrapper turns the stored form of an encryption key secret into raw key bytes.
type SecretUnwrapper interface {
	Unwrap(ctx context.Context, stored []byte) ([]byte, error)
}

// keeperUnwrapper decrypts stored secrets with a KMS keeper.
type keeperUnwrapper struct {
	keeper cryptoDomain.KMSKeeper
}

// NewKeeperUnwrapper returns a SecretUnwrapper backed by keeper.
func NewKeeperUnwrapper(keeper cryptoDomain.KMSKeeper) SecretUnwrapper {
	return &keeperUnwrapper{keeper: keeper}
}

func (u *keeperUnwrapper) Unwrap(ctx context.Context, stored []byte) ([]byte, error) {
	secret, err := u.keeper.Decrypt(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key secret: %w", err)
	}
	return secret, nil
}

// plainUnwrapper returns stored secrets unchanged. Used when no KMS is configured.
type plainUnwrapper struct{}

// NewPlainUnwrapper returns a SecretUnwrapper that does not transform secrets.
func NewPlainUnwrapper() SecretUnwrapper {
	return plainUnwrapper{}
}

func (plainUnwrapper) Unwrap(_ context.Context, stored []byte) ([]byte, error) {
	secret := make([]byte, len(stored))
	copy(secret, stored)
	return secret, nil
}
