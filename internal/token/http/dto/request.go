// Package dto provides data transfer objects for the token endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
)

// MissingIdentifierMessage is returned when a request carries no usable identifier.
const MissingIdentifierMessage = "Required Parameter Missing: email or email_hash"

// IdentifierQuery holds the identifier parameters shared by generate, validate and logout.
type IdentifierQuery struct {
	Email     string `form:"email"`
	EmailHash string `form:"email_hash"`
	Token     string `form:"token"`
}

// Input normalizes the identifier. It returns nil when neither parameter is present.
func (q *IdentifierQuery) Input() *identityDomain.IdentifierInput {
	return identityService.FromParams(q.Email, q.EmailHash)
}

// RefreshQuery holds the parameters of a refresh call.
type RefreshQuery struct {
	RefreshToken string `form:"refresh_token"`
}

// Validate checks that a refresh token was supplied.
func (q *RefreshQuery) Validate() error {
	return validation.Validate(q.RefreshToken,
		validation.Required.Error("Required Parameter Missing: refresh_token"))
}
