// Package service provides API key generation, parsing and verification.
//
// An API key has the form "<prefix>.<secret>". The prefix is stored in clear and used to find
// the owning client; the secret is stored as an Argon2id hash.
package service

// GeneratedAPIKey is a freshly generated key. APIKey must be shown to the operator once and
// never stored; Hash is what gets persisted.
type GeneratedAPIKey struct {
	Prefix string
	APIKey string
	Hash   string
}

// APIKeyService defines operations on client API keys.
type APIKeyService interface {
	// Generate creates a new random API key and hashes its secret.
	Generate() (*GeneratedAPIKey, error)

	// HashSecret hashes a secret with Argon2id.
	HashSecret(secret string) (string, error)

	// Parse splits an API key into its prefix and secret.
	Parse(apiKey string) (prefix, secret string, err error)

	// Verify compares a secret with a stored hash in constant time.
	Verify(secret, hash string) bool

	// Fingerprint returns the hex SHA-256 of a full API key, used as a cache key so the
	// plaintext key is never retained.
	Fingerprint(apiKey string) string
}
