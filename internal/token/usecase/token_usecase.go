package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
	tokenService "github.com/allisson/uidoperator/internal/token/service"
)

// Config holds token issuing settings.
type Config struct {
	AdvertisingExpiration time.Duration
	RefreshExpiration     time.Duration
	EncodingVersion       tokenDomain.Version
	LegacyEnabled         bool
}

type tokenUseCase struct {
	keys    KeySource
	salts   SaltSource
	gate    OptOutGate
	codec   TokenCodec
	hasher  *identityService.SaltedHasher
	config  Config
	version tokenDomain.Version
	now     func() time.Time
}

// NewTokenUseCase creates a TokenUseCase. V1 is only issued when both configured and
// allowed; otherwise tokens are issued as V2.
func NewTokenUseCase(
	keys KeySource,
	salts SaltSource,
	gate OptOutGate,
	codec TokenCodec,
	hasher *identityService.SaltedHasher,
	config Config,
) TokenUseCase {
	version := config.EncodingVersion
	if version != tokenDomain.V1 || !config.LegacyEnabled {
		version = tokenDomain.V2
	}
	return &tokenUseCase{
		keys:    keys,
		salts:   salts,
		gate:    gate,
		codec:   codec,
		hasher:  hasher,
		config:  config,
		version: version,
		now:     time.Now,
	}
}

func (t *tokenUseCase) Generate(
	_ context.Context,
	input *identityDomain.IdentifierInput,
	siteID int64,
) (*tokenDomain.IdentityTokens, error) {
	if input == nil {
		return nil, identityDomain.ErrMissingIdentifier
	}
	if !input.Valid {
		return nil, identityDomain.ErrInvalidIdentifier
	}

	keys, err := t.keys.Get()
	if err != nil {
		return nil, err
	}
	salts, err := t.salts.Get()
	if err != nil {
		return nil, err
	}

	firstLevel := t.hasher.FirstLevelHash(input.Normalized, salts)
	return t.issue(firstLevel, siteID, tokenDomain.DefaultPrivacyBits, t.now().UTC(), keys, salts)
}

func (t *tokenUseCase) Validate(
	_ context.Context,
	advertisingToken string,
	input *identityDomain.IdentifierInput,
) (bool, error) {
	if input == nil || !input.Valid {
		return false, identityDomain.ErrMissingIdentifier
	}
	if !identityService.IsValidationIdentity(input) {
		return false, nil
	}

	keys, err := t.keys.Get()
	if err != nil {
		return false, err
	}
	salts, err := t.salts.Get()
	if err != nil {
		return false, err
	}

	data, err := tokenService.DecodeString(advertisingToken)
	if err != nil {
		return false, nil
	}
	token, err := t.codec.Decode(data, keys, t.now().UTC())
	if err != nil || token.Kind != tokenDomain.KindAdvertising {
		return false, nil
	}

	_, advertisingID, _, err := t.hasher.Map(input.Normalized, salts)
	if err != nil {
		return false, err
	}
	expected, err := base64.StdEncoding.DecodeString(advertisingID)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(expected, token.Payload.IdentityHash) == 1, nil
}

func (t *tokenUseCase) Logout(ctx context.Context, input *identityDomain.IdentifierInput) error {
	if input == nil {
		return identityDomain.ErrMissingIdentifier
	}
	if !input.Valid {
		return identityDomain.ErrInvalidIdentifier
	}

	salts, err := t.salts.Get()
	if err != nil {
		return err
	}
	return t.gate.Invalidate(ctx, t.hasher.FirstLevelHash(input.Normalized, salts))
}

// issue encodes a fresh triple. The advertising token carries the advertising id derived from
// the current salts; the user and refresh tokens carry the first-level hash.
func (t *tokenUseCase) issue(
	firstLevel string,
	siteID int64,
	privacyBits uint32,
	now time.Time,
	keys *keysDomain.KeySnapshot,
	salts *identityDomain.SaltSnapshot,
) (*tokenDomain.IdentityTokens, error) {
	advertisingID, _, err := t.hasher.AdvertisingID(firstLevel, salts)
	if err != nil {
		return nil, err
	}
	firstLevelBytes, err := base64.StdEncoding.DecodeString(firstLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to decode first-level hash: %w", err)
	}
	advertisingBytes, err := base64.StdEncoding.DecodeString(advertisingID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode advertising id: %w", err)
	}

	payload := func(hash []byte, ttl time.Duration) tokenDomain.Payload {
		return tokenDomain.Payload{
			IdentityHash:  hash,
			SiteID:        siteID,
			EstablishedAt: now,
			ExpiresAt:     now.Add(ttl),
			PrivacyBits:   privacyBits,
		}
	}

	advertising, err := t.codec.Encode(
		tokenDomain.KindAdvertising, payload(advertisingBytes, t.config.AdvertisingExpiration), keys, now, t.version,
	)
	if err != nil {
		return nil, err
	}
	user, err := t.codec.Encode(
		tokenDomain.KindUser, payload(firstLevelBytes, t.config.AdvertisingExpiration), keys, now, t.version,
	)
	if err != nil {
		return nil, err
	}
	refresh, err := t.codec.Encode(
		tokenDomain.KindRefresh, payload(firstLevelBytes, t.config.RefreshExpiration), keys, now, t.version,
	)
	if err != nil {
		return nil, err
	}

	return &tokenDomain.IdentityTokens{
		AdvertisingToken: tokenService.EncodeString(advertising),
		UserToken:        tokenService.EncodeString(user),
		RefreshToken:     tokenService.EncodeString(refresh),
	}, nil
}
