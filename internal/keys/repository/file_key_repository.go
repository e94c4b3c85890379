package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

type keysFile struct {
	Keys []struct {
		ID        int64     `yaml:"id"`
		SiteID    int64     `yaml:"site_id"`
		Secret    string    `yaml:"secret"`
		Algorithm string    `yaml:"algorithm"`
		Created   time.Time `yaml:"created"`
		Activates time.Time `yaml:"activates"`
		Expires   time.Time `yaml:"expires"`
	} `yaml:"keys"`
}

type aclsFile struct {
	ACLs []struct {
		SiteID int64   `yaml:"site_id"`
		Mode   string  `yaml:"mode"`
		Sites  []int64 `yaml:"sites"`
	} `yaml:"acls"`
}

// FileKeyRepository loads keys and sharing rules from YAML files. Secrets are base64 encoded
// and, like the SQL store, may be KMS wrapped.
type FileKeyRepository struct {
	keysPath  string
	aclsPath  string
	unwrapper cryptoService.SecretUnwrapper
}

// NewFileKeyRepository creates a file-backed key repository. An empty aclsPath means no
// sharing rules.
func NewFileKeyRepository(keysPath, aclsPath string, unwrapper cryptoService.SecretUnwrapper) *FileKeyRepository {
	return &FileKeyRepository{keysPath: keysPath, aclsPath: aclsPath, unwrapper: unwrapper}
}

// LoadKeys reads the keys file.
func (f *FileKeyRepository) LoadKeys(ctx context.Context) (*keysDomain.KeySnapshot, error) {
	var file keysFile
	if err := readYAML(f.keysPath, &file); err != nil {
		return nil, err
	}

	records := make([]keyRecord, 0, len(file.Keys))
	for _, k := range file.Keys {
		secret, err := base64.StdEncoding.DecodeString(k.Secret)
		if err != nil {
			return nil, fmt.Errorf("key %d: invalid secret encoding: %w", k.ID, err)
		}
		records = append(records, keyRecord{
			ID:          k.ID,
			SiteID:      k.SiteID,
			Secret:      secret,
			Algorithm:   k.Algorithm,
			CreatedAt:   k.Created,
			ActivatesAt: k.Activates,
			ExpiresAt:   k.Expires,
		})
	}
	return buildKeySnapshot(ctx, f.unwrapper, records)
}

// LoadACLs reads the sharing rules file.
func (f *FileKeyRepository) LoadACLs(_ context.Context) (*keysDomain.ACLSnapshot, error) {
	if f.aclsPath == "" {
		return keysDomain.NewACLSnapshot(nil), nil
	}

	var file aclsFile
	if err := readYAML(f.aclsPath, &file); err != nil {
		return nil, err
	}

	rules := make([]keysDomain.KeyACL, 0, len(file.ACLs))
	for _, a := range file.ACLs {
		rule, err := buildACL(a.SiteID, a.Mode, a.Sites)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return keysDomain.NewACLSnapshot(rules), nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
