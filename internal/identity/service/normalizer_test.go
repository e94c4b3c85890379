package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

func emailHash(email string) string {
	sum := sha256.Sum256([]byte(email))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		valid     bool
		canonical string
	}{
		{"plain", "test@uid2.com", true, "test@uid2.com"},
		{"trim and lower", "  Test@UID2.com ", true, "test@uid2.com"},
		{"gmail dots and tag", "Jane.Doe+news@gmail.com", true, "janedoe@gmail.com"},
		{"googlemail", "j.d@googlemail.com", true, "jd@googlemail.com"},
		{"non gmail keeps dots", "jane.doe+x@example.com", true, "jane.doe+x@example.com"},
		{"missing at", "testuid2.com", false, ""},
		{"two at", "a@b@c.com", false, ""},
		{"empty local", "@uid2.com", false, ""},
		{"empty domain", "test@", false, ""},
		{"inner space", "te st@uid2.com", false, ""},
		{"empty", "", false, ""},
		{"gmail only tag", "+tag@gmail.com", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NormalizeEmail(tt.raw)
			assert.Equal(t, identityDomain.KindEmail, input.Kind)
			assert.Equal(t, tt.raw, input.Provided)
			assert.Equal(t, tt.valid, input.Valid)
			if tt.valid {
				assert.Equal(t, emailHash(tt.canonical), input.Normalized)
			} else {
				assert.Empty(t, input.Normalized)
			}
		})
	}
}

func TestNormalizeHash(t *testing.T) {
	sum := sha256.Sum256([]byte("test@uid2.com"))
	b64 := base64.StdEncoding.EncodeToString(sum[:])
	hexed := hex.EncodeToString(sum[:])

	t.Run("base64 passes through", func(t *testing.T) {
		input := NormalizeHash(b64)
		assert.True(t, input.Valid)
		assert.Equal(t, b64, input.Normalized)
		assert.Equal(t, identityDomain.KindEmailHash, input.Kind)
	})

	t.Run("hex is canonicalized", func(t *testing.T) {
		input := NormalizeHash(hexed)
		assert.True(t, input.Valid)
		assert.Equal(t, b64, input.Normalized)
		assert.Equal(t, hexed, input.Provided)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		input := NormalizeHash("  " + hex.EncodeToString(sum[:]) + " ")
		assert.True(t, input.Valid)
	})

	t.Run("wrong length", func(t *testing.T) {
		assert.False(t, NormalizeHash("abc").Valid)
	})

	t.Run("base64 length but invalid alphabet", func(t *testing.T) {
		assert.False(t, NormalizeHash("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!=").Valid)
	})

	t.Run("hex length but not hex", func(t *testing.T) {
		bad := "zz" + hexed[2:]
		assert.False(t, NormalizeHash(bad).Valid)
	})
}

func TestFromParams(t *testing.T) {
	assert.Nil(t, FromParams("", ""))

	input := FromParams("test@uid2.com", "ignored")
	assert.Equal(t, identityDomain.KindEmail, input.Kind)

	input = FromParams("", emailHash("test@uid2.com"))
	assert.Equal(t, identityDomain.KindEmailHash, input.Kind)
	assert.True(t, input.Valid)
}

func TestNormalizeEmailAndHashAgree(t *testing.T) {
	fromEmail := NormalizeEmail("test@uid2.com")
	fromHash := NormalizeHash(emailHash("test@uid2.com"))

	assert.Equal(t, fromEmail.Normalized, fromHash.Normalized)
}

func TestIsValidationIdentity(t *testing.T) {
	assert.True(t, IsValidationIdentity(NormalizeEmail("Validate@Email.com")))
	assert.True(t, IsValidationIdentity(NormalizeHash(emailHash(identityDomain.ValidationEmail))))
	assert.False(t, IsValidationIdentity(NormalizeEmail("test@uid2.com")))
	assert.False(t, IsValidationIdentity(NormalizeEmail("invalid")))
	assert.False(t, IsValidationIdentity(nil))
}
