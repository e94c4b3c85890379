package app

import (
	"fmt"
	"sync"

	"github.com/allisson/uidoperator/internal/config"
	cryptoService "github.com/allisson/uidoperator/internal/crypto/service"
	identityHTTP "github.com/allisson/uidoperator/internal/identity/http"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
	identityUseCase "github.com/allisson/uidoperator/internal/identity/usecase"
	keysHTTP "github.com/allisson/uidoperator/internal/keys/http"
	keysUseCase "github.com/allisson/uidoperator/internal/keys/usecase"
	optoutPublisher "github.com/allisson/uidoperator/internal/optout/publisher"
	optoutRepository "github.com/allisson/uidoperator/internal/optout/repository"
	optoutService "github.com/allisson/uidoperator/internal/optout/service"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
	tokenHTTP "github.com/allisson/uidoperator/internal/token/http"
	tokenService "github.com/allisson/uidoperator/internal/token/service"
	tokenUseCase "github.com/allisson/uidoperator/internal/token/usecase"
)

type tokenComponents struct {
	saltedHasher    *identityService.SaltedHasher
	tokenCodec      *tokenService.Codec
	optOutStore     optoutService.Store
	optOutPublisher optoutPublisher.Publisher
	optOutGate      *optoutService.Gate
	tokenUseCase    tokenUseCase.TokenUseCase
	identityUseCase identityUseCase.IdentityUseCase
	keyUseCase      keysUseCase.KeyUseCase
	tokenHandler    *tokenHTTP.TokenHandler
	identityHandler *identityHTTP.IdentityHandler
	keyHandler      *keysHTTP.KeyHandler

	saltedHasherInit    sync.Once
	tokenCodecInit      sync.Once
	optOutStoreInit     sync.Once
	optOutPublisherInit sync.Once
	optOutGateInit      sync.Once
	tokenUseCaseInit    sync.Once
	identityUseCaseInit sync.Once
	keyUseCaseInit      sync.Once
	tokenHandlerInit    sync.Once
	identityHandlerInit sync.Once
	keyHandlerInit      sync.Once
}

// SaltedHasher returns the identity hasher.
func (c *Container) SaltedHasher() *identityService.SaltedHasher {
	c.saltedHasherInit.Do(func() {
		c.saltedHasher = identityService.NewSaltedHasher()
	})
	return c.saltedHasher
}

// TokenCodec returns the token codec.
func (c *Container) TokenCodec() *tokenService.Codec {
	c.tokenCodecInit.Do(func() {
		c.tokenCodec = tokenService.NewCodec(cryptoService.NewAEADManager(), c.config.TokenSiteKeysEnabled)
	})
	return c.tokenCodec
}

// OptOutStore returns the persistent opt-out store for the configured driver.
func (c *Container) OptOutStore() (optoutService.Store, error) {
	var err error
	c.optOutStoreInit.Do(func() {
		c.optOutStore, err = c.initOptOutStore()
		if err != nil {
			c.initErrors["optOutStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["optOutStore"]; exists {
		return nil, storedErr
	}
	return c.optOutStore, nil
}

// OptOutPublisher returns the opt-out event publisher. Without brokers events are dropped.
func (c *Container) OptOutPublisher() optoutPublisher.Publisher {
	c.optOutPublisherInit.Do(func() {
		brokers := c.config.KafkaBrokerList()
		if len(brokers) == 0 {
			c.optOutPublisher = optoutPublisher.NewNoopPublisher()
			return
		}
		c.optOutPublisher = optoutPublisher.NewKafkaPublisher(brokers, c.config.KafkaOptOutTopic)
	})
	return c.optOutPublisher
}

// OptOutGate returns the opt-out gate. Its writer must be started for logouts to persist.
func (c *Container) OptOutGate() (*optoutService.Gate, error) {
	var err error
	c.optOutGateInit.Do(func() {
		c.optOutGate, err = c.initOptOutGate()
		if err != nil {
			c.initErrors["optOutGate"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["optOutGate"]; exists {
		return nil, storedErr
	}
	return c.optOutGate, nil
}

// TokenUseCase returns the token lifecycle use case.
func (c *Container) TokenUseCase() (tokenUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// IdentityUseCase returns the identity mapping use case.
func (c *Container) IdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	var err error
	c.identityUseCaseInit.Do(func() {
		c.identityUseCase, err = c.initIdentityUseCase()
		if err != nil {
			c.initErrors["identityUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityUseCase"]; exists {
		return nil, storedErr
	}
	return c.identityUseCase, nil
}

// KeyUseCase returns the key distribution use case.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// TokenHandler returns the HTTP handler for token operations.
func (c *Container) TokenHandler() (*tokenHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		var useCase tokenUseCase.TokenUseCase
		useCase, err = c.TokenUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get token use case for token handler: %w", err)
			c.initErrors["tokenHandler"] = err
			return
		}
		c.tokenHandler = tokenHTTP.NewTokenHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// IdentityHandler returns the HTTP handler for identity mapping operations.
func (c *Container) IdentityHandler() (*identityHTTP.IdentityHandler, error) {
	var err error
	c.identityHandlerInit.Do(func() {
		var useCase identityUseCase.IdentityUseCase
		useCase, err = c.IdentityUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get identity use case for identity handler: %w", err)
			c.initErrors["identityHandler"] = err
			return
		}
		c.identityHandler = identityHTTP.NewIdentityHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityHandler"]; exists {
		return nil, storedErr
	}
	return c.identityHandler, nil
}

// KeyHandler returns the HTTP handler for key distribution.
func (c *Container) KeyHandler() (*keysHTTP.KeyHandler, error) {
	var err error
	c.keyHandlerInit.Do(func() {
		var useCase keysUseCase.KeyUseCase
		useCase, err = c.KeyUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get key use case for key handler: %w", err)
			c.initErrors["keyHandler"] = err
			return
		}
		c.keyHandler = keysHTTP.NewKeyHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

// initOptOutStore creates the opt-out store based on the opt-out and database drivers.
func (c *Container) initOptOutStore() (optoutService.Store, error) {
	switch c.config.OptOutStoreDriver {
	case config.OptOutStoreBadger:
		store, err := optoutRepository.OpenBadgerOptOutRepository(c.config.OptOutBadgerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open opt-out store: %w", err)
		}
		c.addCloser("opt-out store", store.Close)
		return store, nil
	case config.OptOutStoreSQL:
	default:
		return nil, fmt.Errorf("unsupported opt-out store driver: %s", c.config.OptOutStoreDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for opt-out store: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return optoutRepository.NewPostgreSQLOptOutRepository(db), nil
	case "mysql":
		return optoutRepository.NewMySQLOptOutRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOptOutGate creates the gate over the opt-out store and publisher.
func (c *Container) initOptOutGate() (*optoutService.Gate, error) {
	store, err := c.OptOutStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get opt-out store for opt-out gate: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for opt-out gate: %w", err)
	}

	gate := optoutService.NewGate(
		store,
		c.OptOutPublisher(),
		optoutService.GateConfig{
			LookupTimeout:   c.config.OptOutLookupTimeout,
			QueueSize:       c.config.OptOutQueueSize,
			WriteMaxRetries: c.config.OptOutWriteMaxRetries,
			RetryInterval:   c.config.OptOutWriteRetryInterval,
			MaxPending:      c.config.OptOutMaxPending,
		},
		c.Logger(),
		businessMetrics,
	)
	c.addCloser("opt-out publisher", gate.Close)

	return gate, nil
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (tokenUseCase.TokenUseCase, error) {
	gate, err := c.OptOutGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get opt-out gate for token use case: %w", err)
	}

	version, err := tokenDomain.ParseVersion(c.config.TokenEncodingVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid token encoding version: %w", err)
	}

	baseUseCase := tokenUseCase.NewTokenUseCase(
		c.KeyHolder(),
		c.SaltHolder(),
		gate,
		c.TokenCodec(),
		c.SaltedHasher(),
		tokenUseCase.Config{
			AdvertisingExpiration: c.config.TokenAdvertisingExpiration,
			RefreshExpiration:     c.config.TokenRefreshExpiration,
			EncodingVersion:       version,
			LegacyEnabled:         c.config.TokenLegacyEnabled,
		},
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return tokenUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initIdentityUseCase creates the identity mapping use case.
func (c *Container) initIdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	baseUseCase := identityUseCase.NewIdentityUseCase(
		c.SaltHolder(),
		c.SaltedHasher(),
		c.config.IdentityMapMaxBatch,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for identity use case: %w", err)
		}
		return identityUseCase.NewIdentityUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyUseCase creates the key distribution use case.
func (c *Container) initKeyUseCase() (keysUseCase.KeyUseCase, error) {
	baseUseCase := keysUseCase.NewKeyUseCase(c.KeyHolder(), c.ACLHolder())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return keysUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
