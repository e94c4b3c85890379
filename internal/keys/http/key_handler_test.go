package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authHTTP "github.com/allisson/uidoperator/internal/auth/http"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	keysMocks "github.com/allisson/uidoperator/internal/keys/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestHandler(t *testing.T) (*KeyHandler, *keysMocks.MockKeyUseCase) {
	t.Helper()

	keyUseCase := &keysMocks.MockKeyUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewKeyHandler(keyUseCase, logger), keyUseCase
}

func newContext(client *authDomain.Client, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	if client != nil {
		c.Request = c.Request.WithContext(authHTTP.WithClient(c.Request.Context(), client))
	}
	return c, w
}

func sampleKeys() []*keysDomain.EncryptionKey {
	created := time.Unix(1714521600, 0).UTC()
	return []*keysDomain.EncryptionKey{
		{ID: 2, SiteID: keysDomain.AdvertisingTokenSiteID, Secret: []byte{0xff}, CreatedAt: created, ActivatesAt: created, ExpiresAt: created.Add(time.Hour)},
		{ID: 3, SiteID: 201, Secret: []byte{0x01}, CreatedAt: created, ActivatesAt: created, ExpiresAt: created.Add(time.Hour)},
	}
}

func TestKeyHandler_ListHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, keyUseCase := setupTestHandler(t)
		client := &authDomain.Client{SiteID: 201, Roles: []authDomain.Role{authDomain.RoleIDReader}}
		keyUseCase.On("ListKeys", mock.Anything, client).Return(sampleKeys(), nil).Once()

		c, w := newContext(client, "/v1/key/latest")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success","body":[
			{"id":2,"site_id":2,"created":1714521600,"activates":1714521600,"expires":1714525200,"secret":"/w=="},
			{"id":3,"site_id":201,"created":1714521600,"activates":1714521600,"expires":1714525200,"secret":"AQ=="}
		]}`, w.Body.String())
		keyUseCase.AssertExpectations(t)
	})

	t.Run("Success_NoKeysIsEmptyArray", func(t *testing.T) {
		handler, keyUseCase := setupTestHandler(t)
		client := &authDomain.Client{SiteID: 201}
		keyUseCase.On("ListKeys", mock.Anything, client).Return([]*keysDomain.EncryptionKey{}, nil).Once()

		c, w := newContext(client, "/v1/key/latest")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success","body":[]}`, w.Body.String())
	})

	t.Run("Error_ReservedSite", func(t *testing.T) {
		handler, keyUseCase := setupTestHandler(t)
		client := &authDomain.Client{SiteID: keysDomain.AdvertisingTokenSiteID}
		keyUseCase.On("ListKeys", mock.Anything, client).Return(nil, keysDomain.ErrForbiddenSite).Once()

		c, w := newContext(client, "/v1/key/latest")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"invalid_client"`)
	})

	t.Run("Error_Unexpected", func(t *testing.T) {
		handler, keyUseCase := setupTestHandler(t)
		client := &authDomain.Client{SiteID: 201}
		keyUseCase.On("ListKeys", mock.Anything, client).Return(nil, errors.New("secret leak")).Once()

		c, w := newContext(client, "/v1/key/latest")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret leak")
	})
}

func TestKeyHandler_LegacyListHandler(t *testing.T) {
	handler, keyUseCase := setupTestHandler(t)
	client := &authDomain.Client{SiteID: 201}
	keyUseCase.On("ListKeys", mock.Anything, client).Return(sampleKeys()[1:], nil).Once()

	c, w := newContext(client, "/key/latest")
	handler.LegacyListHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":3,"site_id":201,"created":1714521600,"activates":1714521600,"expires":1714525200,"secret":"AQ=="}]`,
		w.Body.String())
}
