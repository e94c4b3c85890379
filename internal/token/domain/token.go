// Package domain defines identity tokens, their payload and refresh outcomes.
package domain

import (
	"fmt"
	"time"
)

// Kind is the purpose a token was issued for.
type Kind uint8

const (
	// KindAdvertising tokens carry the advertising id and are readable by every id_reader.
	KindAdvertising Kind = 1
	// KindUser tokens carry the first-level hash.
	KindUser Kind = 2
	// KindRefresh tokens carry the first-level hash and can be exchanged for a new triple.
	KindRefresh Kind = 3
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindAdvertising || k == KindUser || k == KindRefresh
}

func (k Kind) String() string {
	switch k {
	case KindAdvertising:
		return "advertising"
	case KindUser:
		return "user"
	case KindRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Version is the wire generation of an encoded token. It is the first byte of the token.
type Version uint8

const (
	// V1 tokens are authenticated with HMAC-SHA256 but not encrypted.
	V1 Version = 1
	// V2 tokens are encrypted with an AEAD.
	V2 Version = 2
)

// ParseVersion converts a configured generation number.
func ParseVersion(n int) (Version, error) {
	switch n {
	case int(V1):
		return V1, nil
	case int(V2):
		return V2, nil
	default:
		return 0, fmt.Errorf("unsupported token version %d", n)
	}
}

// DefaultPrivacyBits is stored in every newly generated token.
const DefaultPrivacyBits uint32 = 1

// Payload is the content shared by every token kind. Times have millisecond precision.
//
// IdentityHash is the raw hash bytes: the advertising id for advertising tokens and the
// first-level hash for user and refresh tokens. KeyID is filled in by the codec.
type Payload struct {
	IdentityHash  []byte
	SiteID        int64
	EstablishedAt time.Time
	ExpiresAt     time.Time
	PrivacyBits   uint32
	KeyID         int64
}

// IsExpired reports whether the payload's expiry is at or before now.
func (p *Payload) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Token is a decoded token.
type Token struct {
	Kind    Kind
	Version Version
	Payload Payload
}

// IdentityTokens is the triple handed to clients. Every field is the base64 encoding of an
// encoded token.
type IdentityTokens struct {
	AdvertisingToken string
	UserToken        string
	RefreshToken     string
}
