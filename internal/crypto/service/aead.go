// Package service provides the AEAD ciphers that seal identity tokens and the KMS access
// used to unwrap key secrets at load time.
package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"
)

// AEAD seals and opens token bodies. Nonces are cryptoDomain.NonceSize bytes and every
// ciphertext carries a cryptoDomain.TagSize tag.
type AEAD interface {
	// Encrypt seals plaintext under a fresh random nonce, authenticating aad.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext. Any tag, nonce or aad mismatch yields ErrDecryptionFailed.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager builds the cipher bound to a key's algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Cipher is the AEAD implementation for every supported algorithm. It is stateless and safe
// for concurrent use.
type Cipher struct {
	alg  cryptoDomain.Algorithm
	aead cipher.AEAD
}

// Algorithm reports which construction the cipher uses.
func (c *Cipher) Algorithm() cryptoDomain.Algorithm {
	return c.alg
}

func (c *Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, cryptoDomain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

func (c *Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != cryptoDomain.NonceSize || len(ciphertext) < cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// AEADManagerService is the AEADManager used by the token codec.
type AEADManagerService struct{}

// NewAEADManager returns an AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrUnsupportedAlgorithm for unknown algorithms and ErrInvalidKeySize
// when the key length does not fit alg (AES-GCM takes 16 or 32 bytes, ChaCha20-Poly1305 32).
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	var (
		aead cipher.AEAD
		err  error
	)

	switch alg {
	case cryptoDomain.AESGCM:
		if !cryptoDomain.ValidKeySize(alg, len(key)) {
			return nil, cryptoDomain.ErrInvalidKeySize
		}
		var block cipher.Block
		if block, err = aes.NewCipher(key); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case cryptoDomain.ChaCha20:
		if !cryptoDomain.ValidKeySize(alg, len(key)) {
			return nil, cryptoDomain.ErrInvalidKeySize
		}
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cipher: %w", alg, err)
	}

	return &Cipher{alg: alg, aead: aead}, nil
}
