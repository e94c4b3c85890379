package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
)

type clientsFile struct {
	Clients []struct {
		ID        string    `yaml:"id"`
		Name      string    `yaml:"name"`
		KeyPrefix string    `yaml:"key_prefix"`
		KeyHash   string    `yaml:"key_hash"`
		SiteID    int64     `yaml:"site_id"`
		Roles     []string  `yaml:"roles"`
		Disabled  bool      `yaml:"disabled"`
		Created   time.Time `yaml:"created"`
	} `yaml:"clients"`
}

// FileClientRepository loads clients from a YAML file. It is read-only.
type FileClientRepository struct {
	path string
}

// NewFileClientRepository creates a file-backed client repository.
func NewFileClientRepository(path string) *FileClientRepository {
	return &FileClientRepository{path: path}
}

// LoadClients reads the clients file.
func (f *FileClientRepository) LoadClients(_ context.Context) (*authDomain.ClientSnapshot, error) {
	data, err := os.ReadFile(f.path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var file clientsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}

	clients := make([]authDomain.Client, 0, len(file.Clients))
	for _, c := range file.Clients {
		id, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("client %q: invalid id: %w", c.Name, err)
		}
		roles, err := authDomain.ParseRoles(c.Roles)
		if err != nil {
			return nil, fmt.Errorf("client %q: %w", c.Name, err)
		}
		clients = append(clients, authDomain.Client{
			ID:        id,
			Name:      c.Name,
			KeyPrefix: c.KeyPrefix,
			KeyHash:   c.KeyHash,
			SiteID:    c.SiteID,
			Roles:     roles,
			Disabled:  c.Disabled,
			CreatedAt: c.Created.UTC(),
		})
	}
	return authDomain.NewClientSnapshot(clients), nil
}

// Create is not supported by the file source.
func (f *FileClientRepository) Create(_ context.Context, _ *authDomain.Client) error {
	return fmt.Errorf("clients file %s is read-only", f.path)
}
