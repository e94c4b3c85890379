package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/uidoperator/internal/crypto/domain"
	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

var keyColumns = []string{"id", "site_id", "secret", "algorithm", "created_at", "activates_at", "expires_at"}

type failingUnwrapper struct{}

func (failingUnwrapper) Unwrap(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("kms unavailable")
}

func TestSQLKeyRepository_LoadKeys(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, site_id, secret, algorithm, created_at, activates_at, expires_at`)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	activates := created.Add(time.Hour)
	expires := created.Add(30 * 24 * time.Hour)
	secret16 := make([]byte, 16)
	secret32 := make([]byte, 32)

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows(keyColumns).
				AddRow(1, -1, secret32, "aes-gcm", created, activates, expires).
				AddRow(2, 2, secret16, "", created, activates, expires).
				AddRow(3, 201, secret32, "chacha20-poly1305", created, activates, expires),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		snap, err := repo.LoadKeys(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, snap.Len())
		key, ok := snap.Get(2)
		require.True(t, ok)
		assert.Equal(t, int64(keysDomain.AdvertisingTokenSiteID), key.SiteID)
		assert.Equal(t, cryptoDomain.AESGCM, key.Algorithm)
		assert.Equal(t, secret16, key.Secret)
		assert.True(t, activates.Equal(key.ActivatesAt))
		key, ok = snap.Get(3)
		require.True(t, ok)
		assert.Equal(t, cryptoDomain.ChaCha20, key.Algorithm)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_InvalidKeySize", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows(keyColumns).AddRow(3, 201, secret16, "chacha20-poly1305", created, activates, expires),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadKeys(context.Background())

		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("Error_UnknownAlgorithm", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows(keyColumns).AddRow(3, 201, secret32, "des", created, activates, expires),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadKeys(context.Background())

		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("Error_DuplicateID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows(keyColumns).
				AddRow(3, 201, secret32, "aes-gcm", created, activates, expires).
				AddRow(3, 202, secret32, "aes-gcm", created, activates, expires),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadKeys(context.Background())

		assert.ErrorContains(t, err, "duplicate key id 3")
	})

	t.Run("Error_ExpiresBeforeActivation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows(keyColumns).AddRow(3, 201, secret32, "aes-gcm", created, expires, activates),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadKeys(context.Background())

		assert.Error(t, err)
	})

	t.Run("Error_UnwrapFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows(keyColumns).AddRow(3, 201, secret32, "aes-gcm", created, activates, expires),
		)

		repo := NewSQLKeyRepository(db, failingUnwrapper{})
		_, err = repo.LoadKeys(context.Background())

		assert.ErrorContains(t, err, "kms unavailable")
	})

	t.Run("Error_QueryFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnError(errors.New("connection refused"))

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadKeys(context.Background())

		assert.ErrorContains(t, err, "failed to list encryption keys")
	})
}

func TestSQLKeyRepository_LoadACLs(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT site_id, mode, sites FROM key_acls ORDER BY site_id`)

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows([]string{"site_id", "mode", "sites"}).
				AddRow(201, "whitelist", "202, 203").
				AddRow(202, "blacklist", nil),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		snap, err := repo.LoadACLs(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, snap.Len())
		rule, ok := snap.Rule(201)
		require.True(t, ok)
		assert.True(t, rule.Allows(203))
		assert.False(t, rule.Allows(204))
		rule, ok = snap.Rule(202)
		require.True(t, ok)
		assert.True(t, rule.Allows(999))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_InvalidMode", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows([]string{"site_id", "mode", "sites"}).AddRow(201, "greylist", ""),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadACLs(context.Background())

		assert.ErrorContains(t, err, "key acl for site 201")
	})

	t.Run("Error_InvalidSites", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows([]string{"site_id", "mode", "sites"}).AddRow(201, "whitelist", "202,abc"),
		)

		repo := NewSQLKeyRepository(db, cryptoService.NewPlainUnwrapper())
		_, err = repo.LoadACLs(context.Background())

		assert.ErrorContains(t, err, `invalid site id "abc"`)
	})
}

func TestParseSites(t *testing.T) {
	sites, err := parseSites("")
	require.NoError(t, err)
	assert.Empty(t, sites)

	sites, err = parseSites(" 1,2 ,,3 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, sites)
}
