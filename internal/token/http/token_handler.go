// Package http provides HTTP handlers for token generation, validation, refresh and logout.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/uidoperator/internal/auth/http"
	apperrors "github.com/allisson/uidoperator/internal/errors"
	"github.com/allisson/uidoperator/internal/httputil"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
	"github.com/allisson/uidoperator/internal/token/http/dto"
	tokenUseCase "github.com/allisson/uidoperator/internal/token/usecase"
)

// TokenHandler handles token lifecycle requests.
type TokenHandler struct {
	tokenUseCase tokenUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(tokenUseCase tokenUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// GenerateHandler issues a token triple for the caller's site.
// GET /v1/token/generate?email=...|email_hash=... - Requires the generator role.
func (h *TokenHandler) GenerateHandler(c *gin.Context) {
	tokens, ok := h.generate(c, func() { httputil.ClientError(c, dto.MissingIdentifierMessage) })
	if !ok {
		return
	}
	httputil.Success(c, dto.MapTokensToResponse(tokens))
}

// ValidateHandler reports whether a token belongs to the validation identity.
// GET /v1/token/validate?token=...&email=...|email_hash=...
func (h *TokenHandler) ValidateHandler(c *gin.Context) {
	var query dto.IdentifierQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	input := query.Input()
	if input == nil || !input.Valid {
		httputil.ClientError(c, dto.MissingIdentifierMessage)
		return
	}

	matches, err := h.tokenUseCase.Validate(c.Request.Context(), query.Token, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Success(c, matches)
}

// RefreshBackHandler exchanges a refresh token, waiting on the opt-out lookup inline.
// GET /v1/token/refresh-back?refresh_token=...
func (h *TokenHandler) RefreshBackHandler(c *gin.Context) {
	refreshToken, ok := h.refreshToken(c)
	if !ok {
		return
	}

	outcome, err := h.tokenUseCase.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.writeRefreshOutcome(c, outcome)
}

// RefreshHandler exchanges a refresh token with the opt-out lookup running in the background.
// GET /v1/token/refresh?refresh_token=...
func (h *TokenHandler) RefreshHandler(c *gin.Context) {
	refreshToken, ok := h.refreshToken(c)
	if !ok {
		return
	}

	select {
	case res := <-h.tokenUseCase.RefreshAsync(c.Request.Context(), refreshToken):
		if res.Err != nil {
			httputil.HandleErrorGin(c, res.Err, h.logger)
			return
		}
		h.writeRefreshOutcome(c, res.Outcome)
	case <-c.Request.Context().Done():
		h.logger.Debug("refresh abandoned by caller", slog.Any("error", c.Request.Context().Err()))
	}
}

// LogoutHandler records an opt-out for an identifier.
// GET /token/logout?email=...|email_hash=... - Requires the optout role.
func (h *TokenHandler) LogoutHandler(c *gin.Context) {
	var query dto.IdentifierQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	input := query.Input()
	if input == nil || !input.Valid {
		httputil.ClientError(c, dto.MissingIdentifierMessage)
		return
	}

	if err := h.tokenUseCase.Logout(c.Request.Context(), input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.String(http.StatusOK, "OK")
}

// LegacyGenerateHandler is the unversioned generate call.
// GET /token/generate
func (h *TokenHandler) LegacyGenerateHandler(c *gin.Context) {
	tokens, ok := h.generate(c, func() { c.AbortWithStatus(http.StatusBadRequest) })
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.MapTokensToLegacyResponse(tokens))
}

// LegacyRefreshHandler is the unversioned refresh call. Every outcome other than a refresh
// yields a triple of empty strings.
// GET /token/refresh
func (h *TokenHandler) LegacyRefreshHandler(c *gin.Context) {
	var query dto.RefreshQuery
	if err := c.ShouldBindQuery(&query); err != nil || query.Validate() != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	select {
	case res := <-h.tokenUseCase.RefreshAsync(c.Request.Context(), query.RefreshToken):
		if res.Err != nil {
			httputil.HandleErrorGin(c, res.Err, h.logger)
			return
		}
		c.JSON(http.StatusOK, dto.MapTokensToLegacyResponse(res.Outcome.Tokens))
	case <-c.Request.Context().Done():
		h.logger.Debug("refresh abandoned by caller", slog.Any("error", c.Request.Context().Err()))
	}
}

// LegacyValidateHandler answers "true", "false" or "not allowed" as plain text.
// GET /token/validate
func (h *TokenHandler) LegacyValidateHandler(c *gin.Context) {
	var query dto.IdentifierQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.String(http.StatusOK, "not allowed")
		return
	}

	input := query.Input()
	if !identityService.IsValidationIdentity(input) {
		c.String(http.StatusOK, "not allowed")
		return
	}

	matches, err := h.tokenUseCase.Validate(c.Request.Context(), query.Token, input)
	if err != nil {
		h.logger.Warn("legacy validate failed", slog.Any("error", err))
	}
	if err != nil || !matches {
		c.String(http.StatusOK, "false")
		return
	}
	c.String(http.StatusOK, "true")
}

// generate issues a triple for the authenticated client. onInvalid writes the response for a
// missing or invalid identifier.
func (h *TokenHandler) generate(c *gin.Context, onInvalid func()) (*tokenDomain.IdentityTokens, bool) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return nil, false
	}

	var query dto.IdentifierQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return nil, false
	}

	input := query.Input()
	if input == nil || !input.Valid {
		onInvalid()
		return nil, false
	}

	tokens, err := h.tokenUseCase.Generate(c.Request.Context(), input, client.SiteID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return nil, false
	}
	return tokens, true
}

func (h *TokenHandler) refreshToken(c *gin.Context) (string, bool) {
	var query dto.RefreshQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return "", false
	}
	if err := query.Validate(); err != nil {
		httputil.ClientError(c, err.Error())
		return "", false
	}
	return query.RefreshToken, true
}

func (h *TokenHandler) writeRefreshOutcome(c *gin.Context, outcome tokenDomain.RefreshOutcome) {
	switch outcome.Status {
	case tokenDomain.RefreshStatusRefreshed:
		httputil.Success(c, dto.MapTokensToResponse(outcome.Tokens))
	case tokenDomain.RefreshStatusInvalidToken:
		httputil.Error(c, http.StatusBadRequest, httputil.StatusInvalidToken, "Invalid Token presented")
	case tokenDomain.RefreshStatusOptedOut:
		httputil.SuccessNoBody(c, httputil.StatusOptOut)
	case tokenDomain.RefreshStatusDeprecated:
		httputil.SuccessNoBody(c, httputil.StatusDeprecated)
	default:
		h.logger.Error("unexpected refresh outcome", slog.String("status", outcome.Status.String()))
		httputil.Error(c, http.StatusInternalServerError, httputil.StatusUnknown, "Unknown State")
	}
}
