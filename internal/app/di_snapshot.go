package app

import (
	"context"
	"fmt"
	"sync"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authRepository "github.com/allisson/uidoperator/internal/auth/repository"
	authUseCase "github.com/allisson/uidoperator/internal/auth/usecase"
	"github.com/allisson/uidoperator/internal/config"
	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	identityRepository "github.com/allisson/uidoperator/internal/identity/repository"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	keysRepository "github.com/allisson/uidoperator/internal/keys/repository"
	"github.com/allisson/uidoperator/internal/snapshot"
)

// keyLoader reads encryption keys and their sharing rules.
type keyLoader interface {
	LoadKeys(ctx context.Context) (*keysDomain.KeySnapshot, error)
	LoadACLs(ctx context.Context) (*keysDomain.ACLSnapshot, error)
}

// saltLoader reads the salt snapshot.
type saltLoader interface {
	LoadSalts(ctx context.Context) (*identityDomain.SaltSnapshot, error)
}

// clientStore reads the client snapshot and persists new clients.
type clientStore interface {
	authUseCase.ClientRepository
	LoadClients(ctx context.Context) (*authDomain.ClientSnapshot, error)
}

type snapshotComponents struct {
	secretUnwrapper cryptoService.SecretUnwrapper
	keyRepository   keyLoader
	saltRepository  saltLoader
	clientStore     clientStore

	keyHolder    *snapshot.Holder[keysDomain.KeySnapshot]
	aclHolder    *snapshot.Holder[keysDomain.ACLSnapshot]
	saltHolder   *snapshot.Holder[identityDomain.SaltSnapshot]
	clientHolder *snapshot.Holder[authDomain.ClientSnapshot]

	keyRefresher    *snapshot.Refresher
	aclRefresher    *snapshot.Refresher
	saltRefresher   *snapshot.Refresher
	clientRefresher *snapshot.Refresher

	secretUnwrapperInit sync.Once
	keyRepositoryInit   sync.Once
	saltRepositoryInit  sync.Once
	clientStoreInit     sync.Once
	keyHolderInit       sync.Once
	aclHolderInit       sync.Once
	saltHolderInit      sync.Once
	clientHolderInit    sync.Once
	keyRefresherInit    sync.Once
	aclRefresherInit    sync.Once
	saltRefresherInit   sync.Once
	clientRefresherInit sync.Once
}

// SecretUnwrapper returns the unwrapper applied to stored key secrets.
func (c *Container) SecretUnwrapper(ctx context.Context) (cryptoService.SecretUnwrapper, error) {
	var err error
	c.secretUnwrapperInit.Do(func() {
		c.secretUnwrapper, err = c.initSecretUnwrapper(ctx)
		if err != nil {
			c.initErrors["secretUnwrapper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretUnwrapper"]; exists {
		return nil, storedErr
	}
	return c.secretUnwrapper, nil
}

// KeyRepository returns the encryption key and ACL source for the configured storage driver.
func (c *Container) KeyRepository() (keyLoader, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// SaltRepository returns the salt source for the configured storage driver.
func (c *Container) SaltRepository() (saltLoader, error) {
	var err error
	c.saltRepositoryInit.Do(func() {
		c.saltRepository, err = c.initSaltRepository()
		if err != nil {
			c.initErrors["saltRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["saltRepository"]; exists {
		return nil, storedErr
	}
	return c.saltRepository, nil
}

// ClientRepository returns the client store for the configured storage driver.
func (c *Container) ClientRepository() (clientStore, error) {
	var err error
	c.clientStoreInit.Do(func() {
		c.clientStore, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientStore"]; exists {
		return nil, storedErr
	}
	return c.clientStore, nil
}

// KeyHolder returns the holder of the current key snapshot.
func (c *Container) KeyHolder() *snapshot.Holder[keysDomain.KeySnapshot] {
	c.keyHolderInit.Do(func() {
		c.keyHolder = snapshot.NewHolder[keysDomain.KeySnapshot](nil)
	})
	return c.keyHolder
}

// ACLHolder returns the holder of the current key ACL snapshot.
func (c *Container) ACLHolder() *snapshot.Holder[keysDomain.ACLSnapshot] {
	c.aclHolderInit.Do(func() {
		c.aclHolder = snapshot.NewHolder[keysDomain.ACLSnapshot](nil)
	})
	return c.aclHolder
}

// SaltHolder returns the holder of the current salt snapshot.
func (c *Container) SaltHolder() *snapshot.Holder[identityDomain.SaltSnapshot] {
	c.saltHolderInit.Do(func() {
		c.saltHolder = snapshot.NewHolder[identityDomain.SaltSnapshot](nil)
	})
	return c.saltHolder
}

// ClientHolder returns the holder of the current client snapshot.
func (c *Container) ClientHolder() *snapshot.Holder[authDomain.ClientSnapshot] {
	c.clientHolderInit.Do(func() {
		c.clientHolder = snapshot.NewHolder[authDomain.ClientSnapshot](nil)
	})
	return c.clientHolder
}

// KeyRefresher returns the refresher of the key snapshot.
func (c *Container) KeyRefresher() (*snapshot.Refresher, error) {
	var err error
	c.keyRefresherInit.Do(func() {
		c.keyRefresher, err = c.initKeyRefresher()
		if err != nil {
			c.initErrors["keyRefresher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRefresher"]; exists {
		return nil, storedErr
	}
	return c.keyRefresher, nil
}

// ACLRefresher returns the refresher of the key ACL snapshot.
func (c *Container) ACLRefresher() (*snapshot.Refresher, error) {
	var err error
	c.aclRefresherInit.Do(func() {
		c.aclRefresher, err = c.initACLRefresher()
		if err != nil {
			c.initErrors["aclRefresher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["aclRefresher"]; exists {
		return nil, storedErr
	}
	return c.aclRefresher, nil
}

// SaltRefresher returns the refresher of the salt snapshot.
func (c *Container) SaltRefresher() (*snapshot.Refresher, error) {
	var err error
	c.saltRefresherInit.Do(func() {
		c.saltRefresher, err = c.initSaltRefresher()
		if err != nil {
			c.initErrors["saltRefresher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["saltRefresher"]; exists {
		return nil, storedErr
	}
	return c.saltRefresher, nil
}

// ClientRefresher returns the refresher of the client snapshot.
func (c *Container) ClientRefresher() (*snapshot.Refresher, error) {
	var err error
	c.clientRefresherInit.Do(func() {
		c.clientRefresher, err = c.initClientRefresher()
		if err != nil {
			c.initErrors["clientRefresher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRefresher"]; exists {
		return nil, storedErr
	}
	return c.clientRefresher, nil
}

// initSecretUnwrapper opens the KMS keeper when a key URI is configured. Without one, secrets
// are used as stored.
func (c *Container) initSecretUnwrapper(ctx context.Context) (cryptoService.SecretUnwrapper, error) {
	if c.config.KMSKeyURI == "" {
		return cryptoService.NewPlainUnwrapper(), nil
	}

	keeper, err := cryptoService.NewKMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	c.addCloser("kms keeper", keeper.Close)

	return cryptoService.NewKeeperUnwrapper(keeper), nil
}

// initKeyRepository creates the key repository based on the storage driver.
func (c *Container) initKeyRepository() (keyLoader, error) {
	unwrapper, err := c.SecretUnwrapper(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get secret unwrapper for key repository: %w", err)
	}

	switch c.config.StorageDriver {
	case config.StorageDriverSQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for key repository: %w", err)
		}
		return keysRepository.NewSQLKeyRepository(db, unwrapper), nil
	case config.StorageDriverFile:
		return keysRepository.NewFileKeyRepository(
			c.config.StorageFileKeys,
			c.config.StorageFileKeyACLs,
			unwrapper,
		), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}
}

// initSaltRepository creates the salt repository based on the storage driver.
func (c *Container) initSaltRepository() (saltLoader, error) {
	switch c.config.StorageDriver {
	case config.StorageDriverSQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for salt repository: %w", err)
		}
		return identityRepository.NewSQLSaltRepository(db), nil
	case config.StorageDriverFile:
		return identityRepository.NewFileSaltRepository(c.config.StorageFileSalts), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}
}

// initClientRepository creates the client repository based on the storage and database drivers.
func (c *Container) initClientRepository() (clientStore, error) {
	switch c.config.StorageDriver {
	case config.StorageDriverSQL:
	case config.StorageDriverFile:
		return authRepository.NewFileClientRepository(c.config.StorageFileClients), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLClientRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initKeyRefresher() (*snapshot.Refresher, error) {
	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key refresher: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key refresher: %w", err)
	}
	return snapshot.NewRefresher("keys", c.KeyHolder(), repo.LoadKeys,
		c.config.SnapshotRefreshInterval, c.Logger(), businessMetrics), nil
}

func (c *Container) initACLRefresher() (*snapshot.Refresher, error) {
	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for acl refresher: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for acl refresher: %w", err)
	}
	return snapshot.NewRefresher("key_acls", c.ACLHolder(), repo.LoadACLs,
		c.config.SnapshotRefreshInterval, c.Logger(), businessMetrics), nil
}

// initSaltRefresher reads salts inside one transaction when they come from SQL, so the
// first-level salt and the bucket salts belong to the same revision.
func (c *Container) initSaltRefresher() (*snapshot.Refresher, error) {
	repo, err := c.SaltRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get salt repository for salt refresher: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for salt refresher: %w", err)
	}

	load := repo.LoadSalts
	if c.config.StorageDriver == config.StorageDriverSQL {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for salt refresher: %w", err)
		}
		load = func(ctx context.Context) (*identityDomain.SaltSnapshot, error) {
			var salts *identityDomain.SaltSnapshot
			err := txManager.WithReadTx(ctx, func(ctx context.Context) error {
				var err error
				salts, err = repo.LoadSalts(ctx)
				return err
			})
			return salts, err
		}
	}

	return snapshot.NewRefresher("salts", c.SaltHolder(), load,
		c.config.SnapshotRefreshInterval, c.Logger(), businessMetrics), nil
}

func (c *Container) initClientRefresher() (*snapshot.Refresher, error) {
	repo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client refresher: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for client refresher: %w", err)
	}
	return snapshot.NewRefresher("clients", c.ClientHolder(), repo.LoadClients,
		c.config.SnapshotRefreshInterval, c.Logger(), businessMetrics), nil
}
