package repository

import (
	"context"
	"database/sql"

	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	"github.com/allisson/uidoperator/internal/database"
	apperrors "github.com/allisson/uidoperator/internal/errors"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// SQLKeyRepository loads keys and sharing rules from PostgreSQL or MySQL. The queries take no
// parameters, so one implementation serves both drivers.
//
// Database schema requirements:
//   - encryption_keys: id, site_id, secret (BYTEA/BLOB), algorithm, created_at, activates_at, expires_at
//   - key_acls: site_id, mode ("whitelist" or "blacklist"), sites (comma separated site ids)
type SQLKeyRepository struct {
	db        *sql.DB
	unwrapper cryptoService.SecretUnwrapper
}

// NewSQLKeyRepository creates a new SQL key repository.
func NewSQLKeyRepository(db *sql.DB, unwrapper cryptoService.SecretUnwrapper) *SQLKeyRepository {
	return &SQLKeyRepository{db: db, unwrapper: unwrapper}
}

// LoadKeys reads every stored key.
func (s *SQLKeyRepository) LoadKeys(ctx context.Context) (*keysDomain.KeySnapshot, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, site_id, secret, algorithm, created_at, activates_at, expires_at
			  FROM encryption_keys
			  ORDER BY id`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]keyRecord, 0)
	for rows.Next() {
		var r keyRecord
		if err := rows.Scan(
			&r.ID,
			&r.SiteID,
			&r.Secret,
			&r.Algorithm,
			&r.CreatedAt,
			&r.ActivatesAt,
			&r.ExpiresAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan encryption key")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate encryption keys")
	}

	return buildKeySnapshot(ctx, s.unwrapper, records)
}

// LoadACLs reads every stored sharing rule.
func (s *SQLKeyRepository) LoadACLs(ctx context.Context) (*keysDomain.ACLSnapshot, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT site_id, mode, sites FROM key_acls ORDER BY site_id`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key acls")
	}
	defer func() {
		_ = rows.Close()
	}()

	rules := make([]keysDomain.KeyACL, 0)
	for rows.Next() {
		var (
			siteID int64
			mode   string
			sites  sql.NullString
		)
		if err := rows.Scan(&siteID, &mode, &sites); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key acl")
		}
		ids, err := parseSites(sites.String)
		if err != nil {
			return nil, apperrors.Wrapf(err, "key acl for site %d", siteID)
		}
		rule, err := buildACL(siteID, mode, ids)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate key acls")
	}

	return keysDomain.NewACLSnapshot(rules), nil
}

func buildACL(siteID int64, mode string, sites []int64) (keysDomain.KeyACL, error) {
	parsedMode, err := keysDomain.ParseACLMode(mode)
	if err != nil {
		return keysDomain.KeyACL{}, apperrors.Wrapf(err, "key acl for site %d", siteID)
	}
	return keysDomain.NewKeyACL(siteID, parsedMode, sites), nil
}
