// Package http provides HTTP handlers for identifier mapping and bucket rotation queries.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/uidoperator/internal/httputil"
	"github.com/allisson/uidoperator/internal/identity/http/dto"
	identityService "github.com/allisson/uidoperator/internal/identity/service"
	identityUseCase "github.com/allisson/uidoperator/internal/identity/usecase"
)

const invalidIdentifierMessage = "invalid identifier"

// IdentityHandler handles identity mapping requests.
type IdentityHandler struct {
	identityUseCase identityUseCase.IdentityUseCase
	logger          *slog.Logger
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(identityUseCase identityUseCase.IdentityUseCase, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		identityUseCase: identityUseCase,
		logger:          logger,
	}
}

// MapHandler maps a single email or email hash.
// GET /v1/identity/map?email=...|email_hash=... - Requires the mapper role.
func (h *IdentityHandler) MapHandler(c *gin.Context) {
	input := identityService.FromParams(c.Query("email"), c.Query("email_hash"))
	if input == nil || !input.Valid {
		httputil.ClientError(c, invalidIdentifierMessage)
		return
	}

	mapped, err := h.identityUseCase.Map(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Success(c, dto.MapIdentityToResponse(mapped))
}

// MapBatchHandler maps a list of emails or email hashes, dropping invalid entries.
// POST /v1/identity/map - Requires the mapper role.
func (h *IdentityHandler) MapBatchHandler(c *gin.Context) {
	var req dto.MapBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	mapped, err := h.identityUseCase.MapBatch(c.Request.Context(), req.Inputs())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Success(c, dto.MapBatchToResponse(mapped, true))
}

// BucketsHandler lists salt buckets rotated since a timestamp.
// GET /v1/identity/buckets?since_timestamp=2024-05-01T00:00:00 - Requires the mapper role.
func (h *IdentityHandler) BucketsHandler(c *gin.Context) {
	var req dto.BucketsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.ClientError(c, err.Error())
		return
	}

	since, err := req.Since()
	if err != nil {
		httputil.ClientError(c, err.Error())
		return
	}

	entries, err := h.identityUseCase.ModifiedBuckets(c.Request.Context(), since)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Success(c, dto.MapBucketsToResponse(entries))
}

// LegacyMapHandler returns the bare advertising id of one identifier.
// GET /identity/map
func (h *IdentityHandler) LegacyMapHandler(c *gin.Context) {
	input := identityService.FromParams(c.Query("email"), c.Query("email_hash"))
	if input == nil || !input.Valid {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	mapped, err := h.identityUseCase.Map(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.String(http.StatusOK, mapped.AdvertisingID)
}

// LegacyMapBatchHandler is the unversioned batch call. It answers without an envelope and
// without bucket ids.
// POST /identity/map
func (h *IdentityHandler) LegacyMapBatchHandler(c *gin.Context) {
	var req dto.MapBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("bad request", slog.Any("error", err))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	mapped, err := h.identityUseCase.MapBatch(c.Request.Context(), req.Inputs())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBatchToResponse(mapped, false))
}
