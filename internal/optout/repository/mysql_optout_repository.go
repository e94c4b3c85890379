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

// MySQLOptOutRepository implements opt-out persistence for MySQL.
type MySQLOptOutRepository struct {
	db *sql.DB
}

// NewMySQLOptOutRepository creates a new MySQL opt-out repository.
func NewMySQLOptOutRepository(db *sql.DB) *MySQLOptOutRepository {
	return &MySQLOptOutRepository{db: db}
}

// Latest returns the latest opt-out time of identityHash.
func (m *MySQLOptOutRepository) Latest(ctx context.Context, identityHash string) (time.Time, bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT opted_out_at FROM optouts WHERE identity_hash = ?`

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
func (m *MySQLOptOutRepository) Upsert(ctx context.Context, rec *optoutDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO optouts (identity_hash, opted_out_at)
			  VALUES (?, ?)
			  ON DUPLICATE KEY UPDATE opted_out_at = GREATEST(opted_out_at, VALUES(opted_out_at))`

	if _, err := querier.ExecContext(ctx, query, rec.IdentityHash, rec.OptedOutAt); err != nil {
		return apperrors.Wrap(err, "failed to upsert opt-out")
	}
	return nil
}
