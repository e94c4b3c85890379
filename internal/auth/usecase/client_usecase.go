package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authService "github.com/allisson/uidoperator/internal/auth/service"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	customValidation "github.com/allisson/uidoperator/internal/validation"
)

type clientUseCase struct {
	clientRepo    ClientRepository
	apiKeyService authService.APIKeyService
}

// NewClientUseCase creates a ClientUseCase.
func NewClientUseCase(clientRepo ClientRepository, apiKeyService authService.APIKeyService) ClientUseCase {
	return &clientUseCase{
		clientRepo:    clientRepo,
		apiKeyService: apiKeyService,
	}
}

func (c *clientUseCase) Create(
	ctx context.Context,
	createClientInput *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	if err := validateCreateClientInput(createClientInput); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	key, err := c.apiKeyService.Generate()
	if err != nil {
		return nil, err
	}

	client := &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      createClientInput.Name,
		KeyPrefix: key.Prefix,
		KeyHash:   key.Hash,
		SiteID:    createClientInput.SiteID,
		Roles:     createClientInput.Roles,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		ID:     client.ID,
		APIKey: key.APIKey,
	}, nil
}

func validateCreateClientInput(in *authDomain.CreateClientInput) error {
	if in == nil {
		return validation.NewError("validation_required", "input is required")
	}
	return validation.ValidateStruct(in,
		validation.Field(&in.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&in.SiteID,
			validation.By(func(value any) error {
				if !keysDomain.IsValidSiteID(value.(int64)) {
					return validation.NewError("validation_site_id", "must be a positive, non-reserved site id")
				}
				return nil
			}),
		),
		validation.Field(&in.Roles, validation.Required),
	)
}
