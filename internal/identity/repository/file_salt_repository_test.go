package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSalts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSaltRepository_LoadSalts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		path := writeSalts(t, `
first_level_salt: first-level
salts:
  - id: 1
    bucket_id: a3f1
    salt: salt-one
    last_updated: 2024-04-30T10:00:00Z
  - id: 2
    bucket_id: b7c2
    salt: salt-two
    last_updated: 2024-04-30T12:30:00+02:00
`)

		snap, err := NewFileSaltRepository(path).LoadSalts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "first-level", snap.FirstLevelSalt)
		require.Len(t, snap.Entries, 2)
		assert.Equal(t, "b7c2", snap.Entries[1].BucketID)
		assert.Equal(t, time.Date(2024, 4, 30, 10, 30, 0, 0, time.UTC), snap.Entries[1].LastUpdated)
	})

	t.Run("Error_MissingFirstLevelSalt", func(t *testing.T) {
		path := writeSalts(t, "salts: []\n")

		_, err := NewFileSaltRepository(path).LoadSalts(context.Background())

		assert.ErrorIs(t, err, errMissingFirstLevelSalt)
	})

	t.Run("Error_EmptySalt", func(t *testing.T) {
		path := writeSalts(t, `
first_level_salt: first-level
salts:
  - id: 1
    bucket_id: a3f1
`)

		_, err := NewFileSaltRepository(path).LoadSalts(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket id and salt are required")
	})

	t.Run("Error_MissingFile", func(t *testing.T) {
		_, err := NewFileSaltRepository(filepath.Join(t.TempDir(), "nope.yaml")).LoadSalts(context.Background())

		require.Error(t, err)
	})
}
