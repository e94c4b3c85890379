package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authMocks "github.com/allisson/uidoperator/internal/auth/usecase/mocks"
	"github.com/allisson/uidoperator/internal/config"
	identityHTTP "github.com/allisson/uidoperator/internal/identity/http"
	identityMocks "github.com/allisson/uidoperator/internal/identity/usecase/mocks"
	keysHTTP "github.com/allisson/uidoperator/internal/keys/http"
	keysMocks "github.com/allisson/uidoperator/internal/keys/usecase/mocks"
	"github.com/allisson/uidoperator/internal/metrics"
	tokenHTTP "github.com/allisson/uidoperator/internal/token/http"
	tokenMocks "github.com/allisson/uidoperator/internal/token/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestServer() *Server {
	return NewServer(nil, "localhost", 8080, discardLogger())
}

func createMinimalRouter(server *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(server.logger))

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)
	router.GET("/ops/healthcheck", server.opsHealthCheckHandler)

	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeReadiness(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]any) {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	components, ok := response["components"].(map[string]any)
	require.True(t, ok)
	return response["status"].(string), components
}

func TestHealthHandler(t *testing.T) {
	w := get(createMinimalRouter(createTestServer()), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Run("ready without database or checks", func(t *testing.T) {
		w := get(createMinimalRouter(createTestServer()), "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		status, components := decodeReadiness(t, w)
		assert.Equal(t, "ready", status)
		assert.Empty(t, components)
	})

	t.Run("not ready when a snapshot is missing", func(t *testing.T) {
		server := createTestServer()
		server.AddReadinessCheck("keys", func(context.Context) bool { return true })
		server.AddReadinessCheck("salts", func(context.Context) bool { return false })

		w := get(createMinimalRouter(server), "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		status, components := decodeReadiness(t, w)
		assert.Equal(t, "not_ready", status)
		assert.Equal(t, "ok", components["keys"])
		assert.Equal(t, "error", components["salts"])
	})

	t.Run("database ping", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		server := NewServer(db, "localhost", 8080, discardLogger())
		router := createMinimalRouter(server)

		dbMock.ExpectPing()
		w := get(router, "/ready")
		assert.Equal(t, http.StatusOK, w.Code)

		dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))
		w = get(router, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		_, components := decodeReadiness(t, w)
		assert.Equal(t, "error", components["database"])

		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestOpsHealthCheckHandler(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := get(router, "/ops/healthcheck")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	server.AddReadinessCheck("salts", func(context.Context) bool { return false })
	server.AddReadinessCheck("keys", func(context.Context) bool { return false })

	w = get(router, "/ops/healthcheck")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not ready: keys, salts", w.Body.String())
}

func TestCustomLoggerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := get(router, "/test")

	assert.Equal(t, http.StatusOK, w.Code)
	parsed, err := uuid.Parse(w.Header().Get("X-Request-Id"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, parsed)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := get(router, "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type routerFixture struct {
	server   *Server
	auth     *authMocks.MockAuthUseCase
	token    *tokenMocks.MockTokenUseCase
	identity *identityMocks.MockIdentityUseCase
	keys     *keysMocks.MockKeyUseCase
}

func newRouterFixture(legacy bool) *routerFixture {
	f := &routerFixture{
		server:   createTestServer(),
		auth:     &authMocks.MockAuthUseCase{},
		token:    &tokenMocks.MockTokenUseCase{},
		identity: &identityMocks.MockIdentityUseCase{},
		keys:     &keysMocks.MockKeyUseCase{},
	}
	cfg := &config.Config{LogLevel: "info", LegacyAPIEnabled: legacy}
	logger := discardLogger()

	f.server.SetupRouter(
		cfg,
		f.auth,
		tokenHTTP.NewTokenHandler(f.token, logger),
		identityHTTP.NewIdentityHandler(f.identity, logger),
		keysHTTP.NewKeyHandler(f.keys, logger),
		nil,
		"",
	)
	gin.SetMode(gin.TestMode)
	return f
}

func TestSetupRouter_RequiresAuthentication(t *testing.T) {
	f := newRouterFixture(false)

	for _, path := range []string{
		"/v1/token/generate?email=user@example.com",
		"/v1/identity/map?email=user@example.com",
		"/v1/identity/buckets?since_timestamp=2021-03-01T00:00:00",
		"/v1/key/latest",
		"/token/logout?email=user@example.com",
	} {
		t.Run(path, func(t *testing.T) {
			w := get(f.server.GetHandler(), path)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestSetupRouter_RequiresRole(t *testing.T) {
	f := newRouterFixture(false)
	client := &authDomain.Client{ID: uuid.Must(uuid.NewV7()), SiteID: 201, Roles: []authDomain.Role{authDomain.RoleMapper}}
	f.auth.On("Authenticate", mock.Anything, "prefix.secret").Return(client, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/key/latest", nil)
	req.Header.Set("Authorization", "Bearer prefix.secret")
	f.server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unauthorized"`)
}

func TestSetupRouter_ValidateIsAnonymous(t *testing.T) {
	f := newRouterFixture(false)
	f.token.On("Validate", mock.Anything, "adv", mock.Anything).Return(true, nil)

	w := get(f.server.GetHandler(), "/v1/token/validate?token=adv&email=validate@email.com")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","body":true}`, w.Body.String())
	f.token.AssertExpectations(t)
}

func TestSetupRouter_LegacyEndpoints(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newRouterFixture(false)

		assert.Equal(t, http.StatusNotFound, get(f.server.GetHandler(), "/token/generate").Code)
		assert.Equal(t, http.StatusNotFound, get(f.server.GetHandler(), "/key/latest").Code)
		assert.Equal(t, http.StatusNotFound, get(f.server.GetHandler(), "/token/validate").Code)
	})

	t.Run("enabled", func(t *testing.T) {
		f := newRouterFixture(true)

		assert.Equal(t, http.StatusUnauthorized, get(f.server.GetHandler(), "/token/generate").Code)
		assert.Equal(t, http.StatusUnauthorized, get(f.server.GetHandler(), "/key/latest").Code)

		w := get(f.server.GetHandler(), "/token/validate?token=adv&email=user@example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not allowed", w.Body.String())
	})
}

func TestSetupRouter_NoMetricsEndpoint(t *testing.T) {
	f := newRouterFixture(false)

	assert.Equal(t, http.StatusNotFound, get(f.server.GetHandler(), "/metrics").Code)
}

func TestServer_StartWithoutRouter(t *testing.T) {
	err := createTestServer().Start(context.Background())

	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, "127.0.0.1", 0, discardLogger())
	server.router = createMinimalRouter(server)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
	assert.Error(t, server.baseCtx.Err())
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider.Handler())
	require.NotNil(t, metricsServer)

	w := get(metricsServer.GetHandler(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = get(metricsServer.GetHandler(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = get(metricsServer.GetHandler(), "/v1/token/generate")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
