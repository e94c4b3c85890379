// Package http provides the HTTP handlers that list the encryption keys a client's site may
// use to decrypt tokens.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/uidoperator/internal/auth/http"
	"github.com/allisson/uidoperator/internal/httputil"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	"github.com/allisson/uidoperator/internal/keys/http/dto"
	keysUseCase "github.com/allisson/uidoperator/internal/keys/usecase"
)

// KeyHandler handles key listing requests.
type KeyHandler struct {
	keyUseCase keysUseCase.KeyUseCase
	logger     *slog.Logger
}

// NewKeyHandler creates a new key handler.
func NewKeyHandler(keyUseCase keysUseCase.KeyUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// ListHandler returns the active keys visible to the caller.
// GET /v1/key/latest - Requires the id_reader role.
func (h *KeyHandler) ListHandler(c *gin.Context) {
	keys, ok := h.listKeys(c)
	if !ok {
		return
	}
	httputil.Success(c, dto.MapKeysToResponse(keys))
}

// LegacyListHandler is the unversioned form of ListHandler and returns a bare array.
// GET /key/latest
func (h *KeyHandler) LegacyListHandler(c *gin.Context) {
	keys, ok := h.listKeys(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.MapKeysToResponse(keys))
}

func (h *KeyHandler) listKeys(c *gin.Context) ([]*keysDomain.EncryptionKey, bool) {
	client, _ := authHTTP.GetClient(c.Request.Context())

	keys, err := h.keyUseCase.ListKeys(c.Request.Context(), client)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return nil, false
	}
	return keys, true
}
