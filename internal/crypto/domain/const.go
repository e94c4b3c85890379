// Package domain defines the algorithms, key sizes and external keeper contract used to
// protect identity tokens and the key material that encrypts them.
package domain

// Algorithm names the AEAD cipher bound to an encryption key.
type Algorithm string

const (
	// AESGCM is AES in Galois/Counter Mode. Accepts 16-byte (AES-128) and 32-byte (AES-256) keys.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305. Requires 32-byte keys.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// NonceSize is the nonce length of every supported algorithm.
const NonceSize = 12

// TagSize is the authentication tag length appended to every ciphertext.
const TagSize = 16

// ParseAlgorithm returns the algorithm for name. An empty name defaults to AESGCM, which is
// what keys loaded without an explicit algorithm use.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "", AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// ValidKeySize reports whether a secret of n bytes can be used with alg.
func ValidKeySize(alg Algorithm, n int) bool {
	switch alg {
	case AESGCM:
		return n == 16 || n == 32
	case ChaCha20:
		return n == 32
	default:
		return false
	}
}
