package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Client is an API key holder scoped to one site.
//
// The presented key has the form "<KeyPrefix>.<secret>"; only an Argon2id hash of the secret
// is stored.
type Client struct {
	ID        uuid.UUID
	Name      string
	KeyPrefix string
	KeyHash   string //nolint:gosec // hashed secret, not plaintext
	SiteID    int64
	Roles     []Role
	Disabled  bool
	CreatedAt time.Time
}

// HasRole reports whether the client was granted role.
func (c *Client) HasRole(role Role) bool {
	return slices.Contains(c.Roles, role)
}

// ClientSnapshot is an immutable set of clients indexed by key prefix.
type ClientSnapshot struct {
	byPrefix map[string]*Client
}

// NewClientSnapshot builds a snapshot from clients.
func NewClientSnapshot(clients []Client) *ClientSnapshot {
	s := &ClientSnapshot{byPrefix: make(map[string]*Client, len(clients))}
	for i := range clients {
		c := clients[i]
		s.byPrefix[c.KeyPrefix] = &c
	}
	return s
}

// ByPrefix returns the client owning prefix.
func (s *ClientSnapshot) ByPrefix(prefix string) (*Client, bool) {
	c, ok := s.byPrefix[prefix]
	return c, ok
}

// Len returns the number of clients.
func (s *ClientSnapshot) Len() int {
	return len(s.byPrefix)
}

// CreateClientInput contains the parameters for registering a new client.
type CreateClientInput struct {
	Name   string
	SiteID int64
	Roles  []Role
}

// CreateClientOutput is the result of registering a client.
// APIKey is only returned once and cannot be recovered.
type CreateClientOutput struct {
	ID     uuid.UUID
	APIKey string
}
