// Package repository implements opt-out persistence.
//
// SQL stores keep one row per identity holding the latest opt-out time. The Badger store keeps
// the same data in an embedded key-value database for operators without a relational database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/uidoperator/internal/database"
	apperrors "github.com/allisson/uidoperator/internal/errors"
	optoutDomain "github.com/allisson/uidoperator/internal/optout/domain"
)

// PostgreSQLOptOutRepository implements opt-out persistence for PostgreSQL.
type PostgreSQLOptOutRepository struct {
	db *sql.DB
}

// NewPostgreSQLOptOutRepository creates a new PostgreSQL opt-out repository.
func NewPostgreSQLOptOutRepository(db *sql.DB) *PostgreSQLOptOutRepository {
	return &PostgreSQLOptOutRepository{db: db}
}

// Latest returns the latest opt-out time of identityHash.
func (p *PostgreSQLOptOutRepository) Latest(ctx context.Context, identityHash string) (time.Time, bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT opted_out_at FROM optouts WHERE identity_hash = $1`

	var optedOutAt time.Time
	err := querier.QueryRowContext(ctx, query, identityHash).Scan(&optedOutAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, apperrors.Wrap(err, "failed to get opt-out")
	}
	return optedOutAt.UTC(), true, nil
}

// Upsert records rec, keeping the most recent opt-out time when one already exists.
func (p *PostgreSQLOptOutRepository) Upsert(ctx context.Context, rec *optoutDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO optouts (identity_hash, opted_out_at)
			  VALUES ($1, $2)
			  ON CONFLICT (identity_hash)
			  DO UPDATE SET opted_out_at = GREATEST(optouts.opted_out_at, EXCLUDED.opted_out_at)`

	if _, err := querier.ExecContext(ctx, query, rec.IdentityHash, rec.OptedOutAt); err != nil {
		return apperrors.Wrap(err, "failed to upsert opt-out")
	}
	return nil
}
