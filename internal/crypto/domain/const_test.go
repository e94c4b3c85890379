package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, AESGCM, alg)

	alg, err = ParseAlgorithm("chacha20-poly1305")
	require.NoError(t, err)
	assert.Equal(t, ChaCha20, alg)

	_, err = ParseAlgorithm("des")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestValidKeySize(t *testing.T) {
	assert.True(t, ValidKeySize(AESGCM, 16))
	assert.True(t, ValidKeySize(AESGCM, 32))
	assert.False(t, ValidKeySize(AESGCM, 24))
	assert.True(t, ValidKeySize(ChaCha20, 32))
	assert.False(t, ValidKeySize(ChaCha20, 16))
	assert.False(t, ValidKeySize(Algorithm("x"), 32))
}
