package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/uidoperator/internal/database"
	apperrors "github.com/allisson/uidoperator/internal/errors"
	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

// SQLSaltRepository loads the salt snapshot from PostgreSQL or MySQL.
//
// Database schema requirements:
//   - salt_settings: first_level_salt (single row)
//   - salts: id, bucket_id, salt, last_updated
type SQLSaltRepository struct {
	db *sql.DB
}

// NewSQLSaltRepository creates a new SQL salt repository.
func NewSQLSaltRepository(db *sql.DB) *SQLSaltRepository {
	return &SQLSaltRepository{db: db}
}

// LoadSalts reads the first level salt and every bucket, ordered by id.
func (s *SQLSaltRepository) LoadSalts(ctx context.Context) (*identityDomain.SaltSnapshot, error) {
	querier := database.GetTx(ctx, s.db)

	var firstLevelSalt string
	err := querier.QueryRowContext(ctx, `SELECT first_level_salt FROM salt_settings LIMIT 1`).
		Scan(&firstLevelSalt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errMissingFirstLevelSalt
		}
		return nil, apperrors.Wrap(err, "failed to get first level salt")
	}

	rows, err := querier.QueryContext(ctx, `SELECT id, bucket_id, salt, last_updated FROM salts ORDER BY id`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list salts")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]identityDomain.SaltEntry, 0)
	for rows.Next() {
		var e identityDomain.SaltEntry
		if err := rows.Scan(&e.ID, &e.BucketID, &e.Salt, &e.LastUpdated); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan salt")
		}
		e.LastUpdated = e.LastUpdated.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate salts")
	}

	return buildSaltSnapshot(firstLevelSalt, entries)
}
