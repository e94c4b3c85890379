// Package httputil provides the response envelope shared by every API endpoint and the
// mapping from domain errors to envelope statuses.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/uidoperator/internal/errors"
)

// Envelope status codes.
const (
	StatusSuccess       = "success"
	StatusClientError   = "client_error"
	StatusUnauthorized  = "unauthorized"
	StatusInvalidToken  = "invalid_token"
	StatusInvalidClient = "invalid_client"
	StatusOptOut        = "optout"
	StatusDeprecated    = "deprecated"
	StatusUnavailable   = "unavailable"
	StatusUnknown       = "unknown"
)

// Envelope is the JSON shape of every versioned response.
type Envelope struct {
	Status  string `json:"status"`
	Body    any    `json:"body,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success writes a 200 envelope carrying body.
func Success(c *gin.Context, body any) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Body: body})
}

// SuccessNoBody writes a 200 envelope with the given status and no body. Used for outcomes
// that are not errors but carry nothing, like "optout".
func SuccessNoBody(c *gin.Context, status string) {
	c.JSON(http.StatusOK, Envelope{Status: status})
}

// Error writes an error envelope.
func Error(c *gin.Context, httpStatus int, status, message string) {
	c.JSON(httpStatus, Envelope{Status: status, Message: message})
}

// ClientError writes a 400 client_error envelope.
func ClientError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, StatusClientError, message)
}

// HandleErrorGin maps domain errors to an HTTP status and envelope. Unknown errors become a
// generic 500 whose details are only logged.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var (
		httpStatus int
		status     string
		message    string
	)

	switch {
	case apperrors.Is(err, apperrors.ErrInvalidToken):
		httpStatus = http.StatusBadRequest
		status = StatusInvalidToken
		message = "Invalid token"

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		httpStatus = http.StatusBadRequest
		status = StatusClientError
		message = err.Error()

	case apperrors.Is(err, apperrors.ErrInvalidClient):
		httpStatus = http.StatusUnauthorized
		status = StatusInvalidClient
		message = "Client is not allowed to use this resource"

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		httpStatus = http.StatusUnauthorized
		status = StatusUnauthorized
		message = "Authentication is required"

	case apperrors.Is(err, apperrors.ErrForbidden):
		httpStatus = http.StatusForbidden
		status = StatusUnauthorized
		message = "Client does not have the required role"

	case apperrors.Is(err, apperrors.ErrNotFound):
		httpStatus = http.StatusNotFound
		status = StatusClientError
		message = "The requested resource was not found"

	case apperrors.Is(err, apperrors.ErrUnavailable):
		httpStatus = http.StatusServiceUnavailable
		status = StatusUnavailable
		message = "A dependency is unavailable, retry later"

	default:
		httpStatus = http.StatusInternalServerError
		status = StatusUnknown
		message = "An internal error occurred"
	}

	if logger != nil {
		level := slog.LevelWarn
		if httpStatus >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", httpStatus),
			slog.String("status", status),
			slog.Any("error", err),
		)
	}

	Error(c, httpStatus, status, message)
}

// HandleBadRequestGin writes a 400 client_error for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	ClientError(c, err.Error())
}
