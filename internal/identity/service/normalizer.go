// Package service implements identifier normalization and salted hashing.
package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

// NormalizeEmail canonicalizes raw and derives the identity hash. Invalid input yields
// Valid=false, never an error.
func NormalizeEmail(raw string) *identityDomain.IdentifierInput {
	input := &identityDomain.IdentifierInput{Kind: identityDomain.KindEmail, Provided: raw}

	email, ok := canonicalEmail(raw)
	if !ok {
		return input
	}

	sum := sha256.Sum256([]byte(email))
	input.Normalized = base64.StdEncoding.EncodeToString(sum[:])
	input.Valid = true
	return input
}

// NormalizeHash accepts a SHA-256 digest as 44-character base64 or 64-character hex and
// returns it as base64.
func NormalizeHash(raw string) *identityDomain.IdentifierInput {
	input := &identityDomain.IdentifierInput{Kind: identityDomain.KindEmailHash, Provided: raw}
	value := strings.TrimSpace(raw)

	switch len(value) {
	case base64.StdEncoding.EncodedLen(sha256.Size):
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil || len(decoded) != sha256.Size {
			return input
		}
		input.Normalized = value
	case hex.EncodedLen(sha256.Size):
		decoded, err := hex.DecodeString(value)
		if err != nil {
			return input
		}
		input.Normalized = base64.StdEncoding.EncodeToString(decoded)
	default:
		return input
	}

	input.Valid = true
	return input
}

// FromParams picks the identifier from request parameters. email wins over emailHash.
// Returns nil when neither is present.
func FromParams(email, emailHash string) *identityDomain.IdentifierInput {
	switch {
	case email != "":
		return NormalizeEmail(email)
	case emailHash != "":
		return NormalizeHash(emailHash)
	default:
		return nil
	}
}

// IsValidationIdentity reports whether input is the fixed identity that token validation
// confirms.
func IsValidationIdentity(input *identityDomain.IdentifierInput) bool {
	return input != nil && input.Valid &&
		input.Normalized == NormalizeEmail(identityDomain.ValidationEmail).Normalized
}

// canonicalEmail lower-cases and validates an address. Gmail addresses additionally lose
// dots and any "+tag" in the local part, since Gmail delivers all of them to one inbox.
func canonicalEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return "", false
	}

	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", false
	}

	if domain == "gmail.com" || domain == "googlemail.com" {
		if i := strings.IndexByte(local, '+'); i >= 0 {
			local = local[:i]
		}
		local = strings.ReplaceAll(local, ".", "")
		if local == "" {
			return "", false
		}
	}

	return local + "@" + domain, true
}
