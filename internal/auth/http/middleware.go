package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authUseCase "github.com/allisson/uidoperator/internal/auth/usecase"
	apperrors "github.com/allisson/uidoperator/internal/errors"
	"github.com/allisson/uidoperator/internal/httputil"
)

const bearerPrefix = "bearer "

// bearerKey extracts the API key from an "Authorization: Bearer <key>" header.
// The scheme is matched case-insensitively.
func bearerKey(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	key := strings.TrimSpace(header[len(bearerPrefix):])
	return key, key != ""
}

// AuthenticationMiddleware requires a valid API key in the Authorization header and stores
// the owning client in the request context.
//
// Error handling:
//   - Missing or malformed header → 401 unauthorized
//   - Unknown, disabled or mismatching key → 401 unauthorized
//   - Client snapshot not loaded → 503 unavailable
func AuthenticationMiddleware(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, ok := bearerKey(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		client, err := authUseCase.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClient(c.Request.Context(), client))

		logger.Debug("authentication successful",
			slog.String("client_id", client.ID.String()),
			slog.Int64("site_id", client.SiteID))

		c.Next()
	}
}

// OptionalAuthenticationMiddleware attaches the client when a valid API key is presented and
// lets the request through unauthenticated otherwise. Used by the refresh endpoints, which
// any token holder may call.
func OptionalAuthenticationMiddleware(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, ok := bearerKey(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		client, err := authUseCase.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			logger.Debug("optional authentication ignored", slog.String("error", err.Error()))
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithClient(c.Request.Context(), client))
		c.Next()
	}
}

// RequireRole rejects authenticated clients that were not granted role.
// Must run after AuthenticationMiddleware.
func RequireRole(role authDomain.Role, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !client.HasRole(role) {
			logger.Debug("authorization failed: missing role",
				slog.String("client_id", client.ID.String()),
				slog.String("role", string(role)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
