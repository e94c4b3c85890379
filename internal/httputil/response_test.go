package httputil

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/uidoperator/internal/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := newTestContext()

	Success(c, map[string]string{"advertising_token": "abc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","body":{"advertising_token":"abc"}}`, w.Body.String())
}

func TestSuccess_EmptySliceBody(t *testing.T) {
	c, w := newTestContext()

	Success(c, []string{})

	assert.JSONEq(t, `{"status":"success","body":[]}`, w.Body.String())
}

func TestSuccessNoBody(t *testing.T) {
	c, w := newTestContext()

	SuccessNoBody(c, StatusOptOut)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"optout"}`, w.Body.String())
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		err            error
		expectedCode   int
		expectedStatus string
	}{
		{"invalid token", apperrors.Wrap(apperrors.ErrInvalidToken, "decode"), http.StatusBadRequest, StatusInvalidToken},
		{"invalid input", apperrors.Wrap(apperrors.ErrInvalidInput, "bad email"), http.StatusBadRequest, StatusClientError},
		{"invalid client", apperrors.ErrInvalidClient, http.StatusUnauthorized, StatusInvalidClient},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, StatusUnauthorized},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, StatusClientError},
		{"unavailable", apperrors.Wrap(apperrors.ErrUnavailable, "optout"), http.StatusServiceUnavailable, StatusUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"`+tt.expectedStatus+`"`)
		})
	}
}

func TestHandleErrorGin_UnknownErrorDoesNotLeakDetails(t *testing.T) {
	c, w := newTestContext()

	HandleErrorGin(c, errors.New("pq: connection refused to 10.0.0.1"), nil)

	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestHandleErrorGin_NilError(t *testing.T) {
	c, w := newTestContext()

	HandleErrorGin(c, nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()

	HandleBadRequestGin(c, errors.New("invalid json"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"client_error","message":"invalid json"}`, w.Body.String())
}
