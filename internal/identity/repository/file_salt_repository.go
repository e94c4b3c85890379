package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

type saltsFile struct {
	FirstLevelSalt string `yaml:"first_level_salt"`
	Salts          []struct {
		ID          int64     `yaml:"id"`
		BucketID    string    `yaml:"bucket_id"`
		Salt        string    `yaml:"salt"`
		LastUpdated time.Time `yaml:"last_updated"`
	} `yaml:"salts"`
}

// FileSaltRepository loads the salt snapshot from a YAML file.
type FileSaltRepository struct {
	path string
}

// NewFileSaltRepository creates a file-backed salt repository.
func NewFileSaltRepository(path string) *FileSaltRepository {
	return &FileSaltRepository{path: path}
}

// LoadSalts reads the salts file.
func (f *FileSaltRepository) LoadSalts(_ context.Context) (*identityDomain.SaltSnapshot, error) {
	data, err := os.ReadFile(f.path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var file saltsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}

	entries := make([]identityDomain.SaltEntry, 0, len(file.Salts))
	for _, s := range file.Salts {
		entries = append(entries, identityDomain.SaltEntry{
			ID:          s.ID,
			BucketID:    s.BucketID,
			Salt:        s.Salt,
			LastUpdated: s.LastUpdated.UTC(),
		})
	}
	return buildSaltSnapshot(file.FirstLevelSalt, entries)
}
