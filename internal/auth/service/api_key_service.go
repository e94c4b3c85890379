package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/allisson/go-pwdhash"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	apperrors "github.com/allisson/uidoperator/internal/errors"
)

const (
	prefixBytes = 8
	secretBytes = 32
	separator   = "."
)

type apiKeyService struct {
	hasher *pwdhash.PasswordHasher
}

// NewAPIKeyService creates an APIKeyService using the Moderate Argon2id policy.
func NewAPIKeyService() APIKeyService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		panic(err)
	}
	return &apiKeyService{hasher: hasher}
}

func (s *apiKeyService) Generate() (*GeneratedAPIKey, error) {
	prefix := make([]byte, prefixBytes)
	if _, err := rand.Read(prefix); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate key prefix")
	}
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate key secret")
	}

	plainPrefix := hex.EncodeToString(prefix)
	plainSecret := base64.RawURLEncoding.EncodeToString(secret)

	hash, err := s.HashSecret(plainSecret)
	if err != nil {
		return nil, err
	}

	return &GeneratedAPIKey{
		Prefix: plainPrefix,
		APIKey: plainPrefix + separator + plainSecret,
		Hash:   hash,
	}, nil
}

func (s *apiKeyService) HashSecret(secret string) (string, error) {
	hash, err := s.hasher.Hash([]byte(secret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hash, nil
}

func (s *apiKeyService) Parse(apiKey string) (string, string, error) {
	prefix, secret, ok := strings.Cut(strings.TrimSpace(apiKey), separator)
	if !ok || prefix == "" || secret == "" {
		return "", "", authDomain.ErrInvalidAPIKey
	}
	return prefix, secret, nil
}

func (s *apiKeyService) Verify(secret, hash string) bool {
	ok, err := s.hasher.Verify([]byte(secret), hash)
	if err != nil {
		return false
	}
	return ok
}

func (s *apiKeyService) Fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
