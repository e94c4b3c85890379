// Package service encodes and decodes identity tokens.
//
// Two wire generations exist. V2 tokens are sealed with an AEAD under the selected key; V1
// tokens carry the plaintext payload and an HMAC-SHA256 tag. Both start with a version byte
// followed by the big-endian id of the key used.
package service

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"strings"
	"time"

	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
)

// headerSize is the version byte plus the 4-byte key id.
const headerSize = 1 + 4

// Codec turns payloads into opaque token bytes and back.
type Codec struct {
	aeadManager     cryptoService.AEADManager
	siteKeysEnabled bool
}

// NewCodec creates a Codec. When siteKeysEnabled is false, user and refresh tokens are
// encrypted with the master key instead of the issuing site's key.
func NewCodec(aeadManager cryptoService.AEADManager, siteKeysEnabled bool) *Codec {
	return &Codec{
		aeadManager:     aeadManager,
		siteKeysEnabled: siteKeysEnabled,
	}
}

// SelectKey returns the key a token of kind issued for siteID is encrypted with.
func (c *Codec) SelectKey(
	kind tokenDomain.Kind,
	siteID int64,
	keys *keysDomain.KeySnapshot,
	now time.Time,
) (*keysDomain.EncryptionKey, error) {
	if keys == nil {
		return nil, keysDomain.ErrNoActiveKey
	}
	return keys.ActiveKeyFor(c.keyOwner(kind, siteID), now)
}

// keyOwner returns the site whose keys seal tokens of kind issued for siteID.
func (c *Codec) keyOwner(kind tokenDomain.Kind, siteID int64) int64 {
	switch {
	case kind == tokenDomain.KindAdvertising:
		return keysDomain.AdvertisingTokenSiteID
	case c.siteKeysEnabled:
		return siteID
	default:
		return keysDomain.MasterKeySiteID
	}
}

// sealedByOwner reports whether key may have sealed a token of kind issued for siteID. User and
// refresh tokens sealed with the master key stay valid after site keys are enabled.
func (c *Codec) sealedByOwner(kind tokenDomain.Kind, siteID int64, key *keysDomain.EncryptionKey) bool {
	if key.SiteID == c.keyOwner(kind, siteID) {
		return true
	}
	return kind != tokenDomain.KindAdvertising && key.SiteID == keysDomain.MasterKeySiteID
}

// Encode selects a key for kind and serializes payload in the requested generation.
func (c *Codec) Encode(
	kind tokenDomain.Kind,
	payload tokenDomain.Payload,
	keys *keysDomain.KeySnapshot,
	now time.Time,
	version tokenDomain.Version,
) ([]byte, error) {
	if version != tokenDomain.V1 && version != tokenDomain.V2 {
		return nil, tokenDomain.ErrUnsupportedVersion
	}
	key, err := c.SelectKey(kind, payload.SiteID, keys, now)
	if err != nil {
		return nil, err
	}
	return c.seal(kind, &payload, key, version)
}

func (c *Codec) seal(
	kind tokenDomain.Kind,
	payload *tokenDomain.Payload,
	key *keysDomain.EncryptionKey,
	version tokenDomain.Version,
) ([]byte, error) {
	if key.ID < 0 || key.ID > math.MaxUint32 {
		return nil, tokenDomain.ErrPayloadTooLarge
	}

	plaintext, err := marshalPayload(kind, payload)
	if err != nil {
		return nil, err
	}

	header := make([]byte, headerSize)
	header[0] = byte(version)
	binary.BigEndian.PutUint32(header[1:], uint32(key.ID))

	if version == tokenDomain.V1 {
		return encodeV1(header, plaintext, key), nil
	}
	return c.encodeV2(header, plaintext, key)
}

// Decode parses and authenticates data against the key snapshot. The key named in the header
// must belong to the owner Encode would pick for the decoded kind and site. Every failure,
// whatever the cause, is reported as ErrInvalidToken.
func (c *Codec) Decode(data []byte, keys *keysDomain.KeySnapshot, now time.Time) (*tokenDomain.Token, error) {
	token, ok := c.decode(data, keys, now)
	if !ok {
		return nil, tokenDomain.ErrInvalidToken
	}
	return token, nil
}

func (c *Codec) decode(data []byte, keys *keysDomain.KeySnapshot, now time.Time) (*tokenDomain.Token, bool) {
	if keys == nil || len(data) < headerSize {
		return nil, false
	}
	version := tokenDomain.Version(data[0])
	if version != tokenDomain.V1 && version != tokenDomain.V2 {
		return nil, false
	}

	keyID := int64(binary.BigEndian.Uint32(data[1:headerSize]))
	key, found := keys.Get(keyID)
	if !found || !key.IsActive(now) {
		return nil, false
	}

	var (
		plaintext []byte
		ok        bool
	)
	if version == tokenDomain.V1 {
		plaintext, ok = decodeV1(data, key)
	} else {
		plaintext, ok = c.decodeV2(data, key)
	}
	if !ok {
		return nil, false
	}

	kind, payload, err := unmarshalPayload(plaintext)
	if err != nil {
		return nil, false
	}
	if !c.sealedByOwner(kind, payload.SiteID, key) {
		return nil, false
	}
	payload.KeyID = keyID

	return &tokenDomain.Token{Kind: kind, Version: version, Payload: payload}, true
}

// EncodeString returns the transport form of token bytes.
func EncodeString(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeString parses the transport form of a token. Standard and URL-safe alphabets are
// accepted, padded or not. A space is read as '+' since query decoding turns one into the other.
func DecodeString(s string) ([]byte, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
	if s == "" {
		return nil, tokenDomain.ErrInvalidToken
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, tokenDomain.ErrInvalidToken
}
