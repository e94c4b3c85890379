package dto

import (
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
)

// TokensResponse is the token triple returned by the versioned endpoints.
type TokensResponse struct {
	AdvertisingToken string `json:"advertising_token"`
	UserToken        string `json:"user_token"`
	RefreshToken     string `json:"refresh_token"`
}

// LegacyTokensResponse is the triple returned by the unversioned endpoints, which also
// carried the advertising token under its older name.
type LegacyTokensResponse struct {
	AdvertisementToken string `json:"advertisement_token"`
	AdvertisingToken   string `json:"advertising_token"`
	UserToken          string `json:"user_token"`
	RefreshToken       string `json:"refresh_token"`
}

// MapTokensToResponse converts an issued triple.
func MapTokensToResponse(tokens *tokenDomain.IdentityTokens) TokensResponse {
	return TokensResponse{
		AdvertisingToken: tokens.AdvertisingToken,
		UserToken:        tokens.UserToken,
		RefreshToken:     tokens.RefreshToken,
	}
}

// MapTokensToLegacyResponse converts an issued triple. A nil triple yields empty strings.
func MapTokensToLegacyResponse(tokens *tokenDomain.IdentityTokens) LegacyTokensResponse {
	if tokens == nil {
		return LegacyTokensResponse{}
	}
	return LegacyTokensResponse{
		AdvertisementToken: tokens.AdvertisingToken,
		AdvertisingToken:   tokens.AdvertisingToken,
		UserToken:          tokens.UserToken,
		RefreshToken:       tokens.RefreshToken,
	}
}
