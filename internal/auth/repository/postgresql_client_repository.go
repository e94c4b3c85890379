// Package repository implements persistence for API clients.
//
// Clients are written by the create-client command and read in bulk into a ClientSnapshot,
// which the authentication middleware consults on every request. PostgreSQL stores ids as
// native UUIDs and roles as JSONB; MySQL uses BINARY(16) and JSON. A YAML file source exists
// for deployments without a database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	"github.com/allisson/uidoperator/internal/database"
	apperrors "github.com/allisson/uidoperator/internal/errors"
)

// PostgreSQLClientRepository implements client persistence for PostgreSQL.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// NewPostgreSQLClientRepository creates a new PostgreSQL client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}

// Create inserts a new client.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	rolesJSON, err := json.Marshal(client.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client roles")
	}

	query := `INSERT INTO clients (id, name, key_prefix, key_hash, site_id, roles, disabled, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.KeyPrefix,
		client.KeyHash,
		client.SiteID,
		rolesJSON,
		client.Disabled,
		client.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// LoadClients reads every client into a snapshot.
func (p *PostgreSQLClientRepository) LoadClients(ctx context.Context) (*authDomain.ClientSnapshot, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, key_prefix, key_hash, site_id, roles, disabled, created_at
			  FROM clients
			  ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clients")
	}
	defer func() {
		_ = rows.Close()
	}()

	clients := make([]authDomain.Client, 0)
	for rows.Next() {
		var (
			client    authDomain.Client
			rolesJSON []byte
		)
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.KeyPrefix,
			&client.KeyHash,
			&client.SiteID,
			&rolesJSON,
			&client.Disabled,
			&client.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan client")
		}
		if err := decodeRoles(rolesJSON, &client); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate clients")
	}

	return authDomain.NewClientSnapshot(clients), nil
}

// decodeRoles parses stored role names. Unknown names fail the whole load rather than
// silently granting less than intended.
func decodeRoles(data []byte, client *authDomain.Client) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal client roles")
	}
	roles, err := authDomain.ParseRoles(names)
	if err != nil {
		return apperrors.Wrapf(err, "client %s", client.ID)
	}
	client.Roles = roles
	return nil
}
