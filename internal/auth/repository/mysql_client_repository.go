package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	"github.com/allisson/uidoperator/internal/database"
	apperrors "github.com/allisson/uidoperator/internal/errors"
)

// MySQLClientRepository implements client persistence for MySQL.
type MySQLClientRepository struct {
	db *sql.DB
}

// NewMySQLClientRepository creates a new MySQL client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}

// Create inserts a new client.
func (m *MySQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	rolesJSON, err := json.Marshal(client.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client roles")
	}

	id, err := client.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `INSERT INTO clients (id, name, key_prefix, key_hash, site_id, roles, disabled, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLClientRepository) LoadClients(ctx context.Context) (*authDomain.ClientSnapshot, error) {
	querier := database.GetTx(ctx, m.db)

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
			idBytes   []byte
			rolesJSON []byte
		)
		if err := rows.Scan(
			&idBytes,
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
		if err := client.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal client id")
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
