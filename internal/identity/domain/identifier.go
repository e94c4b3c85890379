// Package domain defines identifiers, salt snapshots and mapped identities.
package domain

// IdentifierKind tells how an identifier was supplied.
type IdentifierKind string

const (
	// KindEmail is a raw email address.
	KindEmail IdentifierKind = "email"
	// KindEmailHash is the SHA-256 of a normalized email, base64 or hex encoded.
	KindEmailHash IdentifierKind = "email_hash"
)

// ValidationEmail is the only identity the token validation endpoint will confirm.
const ValidationEmail = "validate@email.com"

// IdentifierInput is a normalized identifier.
//
// Normalized is the base64 (standard) encoding of the 32-byte identity hash and is only
// meaningful when Valid is true. Provided is the raw value echoed back to callers.
type IdentifierInput struct {
	Kind       IdentifierKind
	Provided   string
	Normalized string
	Valid      bool
}

// MappedIdentity is the result of mapping one identifier.
type MappedIdentity struct {
	Identifier    string
	AdvertisingID string
	BucketID      string
}
