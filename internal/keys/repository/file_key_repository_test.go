package repository

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"
	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileKeyRepository_LoadKeys(t *testing.T) {
	dir := t.TempDir()
	secret := base64.StdEncoding.EncodeToString(make([]byte, 32))
	keysPath := writeFile(t, dir, "keys.yaml", `
keys:
  - id: 1
    site_id: -1
    secret: `+secret+`
    created: 2024-01-01T00:00:00Z
    activates: 2024-01-01T00:00:00Z
    expires: 2030-01-01T00:00:00Z
  - id: 2
    site_id: 2
    secret: `+secret+`
    algorithm: chacha20-poly1305
    created: 2024-01-01T00:00:00Z
    activates: 2024-01-01T00:00:00Z
    expires: 2030-01-01T00:00:00Z
`)

	repo := NewFileKeyRepository(keysPath, "", cryptoService.NewPlainUnwrapper())
	snap, err := repo.LoadKeys(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	key, ok := snap.Get(2)
	require.True(t, ok)
	assert.Equal(t, cryptoDomain.ChaCha20, key.Algorithm)
	assert.Len(t, key.Secret, 32)

	acls, err := repo.LoadACLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, acls.Len())
}

func TestFileKeyRepository_LoadKeys_WrappedSecrets(t *testing.T) {
	ctx := context.Background()
	keeper, err := secrets.OpenKeeper(ctx, "base64key://")
	require.NoError(t, err)
	defer func() { _ = keeper.Close() }()

	raw := make([]byte, 16)
	raw[0] = 0x42
	wrapped, err := keeper.Encrypt(ctx, raw)
	require.NoError(t, err)

	dir := t.TempDir()
	keysPath := writeFile(t, dir, "keys.yaml", `
keys:
  - id: 7
    site_id: 201
    secret: `+base64.StdEncoding.EncodeToString(wrapped)+`
    created: 2024-01-01T00:00:00Z
    activates: 2024-01-01T00:00:00Z
    expires: 2030-01-01T00:00:00Z
`)

	repo := NewFileKeyRepository(keysPath, "", cryptoService.NewKeeperUnwrapper(keeper))
	snap, err := repo.LoadKeys(ctx)

	require.NoError(t, err)
	key, ok := snap.Get(7)
	require.True(t, ok)
	assert.Equal(t, raw, key.Secret)
}

func TestFileKeyRepository_LoadACLs(t *testing.T) {
	dir := t.TempDir()
	aclsPath := writeFile(t, dir, "acls.yaml", `
acls:
  - site_id: 201
    mode: whitelist
    sites: [202]
  - site_id: 203
    mode: blacklist
`)

	repo := NewFileKeyRepository("", aclsPath, cryptoService.NewPlainUnwrapper())
	snap, err := repo.LoadACLs(context.Background())

	require.NoError(t, err)
	rule, ok := snap.Rule(201)
	require.True(t, ok)
	assert.True(t, rule.Allows(202))
	rule, ok = snap.Rule(203)
	require.True(t, ok)
	assert.True(t, rule.Allows(202))
}

func TestFileKeyRepository_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		repo := NewFileKeyRepository(filepath.Join(dir, "missing.yaml"), "", cryptoService.NewPlainUnwrapper())
		_, err := repo.LoadKeys(ctx)
		assert.ErrorContains(t, err, "failed to read")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "keys: [")
		repo := NewFileKeyRepository(path, "", cryptoService.NewPlainUnwrapper())
		_, err := repo.LoadKeys(ctx)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("bad secret encoding", func(t *testing.T) {
		path := writeFile(t, dir, "secret.yaml", `
keys:
  - id: 1
    site_id: 201
    secret: "***"
    activates: 2024-01-01T00:00:00Z
    expires: 2030-01-01T00:00:00Z
`)
		repo := NewFileKeyRepository(path, "", cryptoService.NewPlainUnwrapper())
		_, err := repo.LoadKeys(ctx)
		assert.ErrorContains(t, err, "invalid secret encoding")
	})

	t.Run("bad acl mode", func(t *testing.T) {
		path := writeFile(t, dir, "acl.yaml", "acls:\n  - site_id: 5\n    mode: open\n")
		repo := NewFileKeyRepository("", path, cryptoService.NewPlainUnwrapper())
		_, err := repo.LoadACLs(ctx)
		assert.Error(t, err)
	})
}
