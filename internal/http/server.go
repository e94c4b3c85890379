// Package http provides the HTTP server, its router and the probes it exposes.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authHTTP "github.com/allisson/uidoperator/internal/auth/http"
	authUseCase "github.com/allisson/uidoperator/internal/auth/usecase"
	"github.com/allisson/uidoperator/internal/config"
	identityHTTP "github.com/allisson/uidoperator/internal/identity/http"
	keysHTTP "github.com/allisson/uidoperator/internal/keys/http"
	"github.com/allisson/uidoperator/internal/metrics"
	tokenHTTP "github.com/allisson/uidoperator/internal/token/http"
)

// ReadinessCheck reports whether one component can serve traffic.
type ReadinessCheck func(ctx context.Context) bool

// Server represents the HTTP server.
type Server struct {
	db      *sql.DB
	server  *http.Server
	router  *gin.Engine
	logger  *slog.Logger
	checks  map[string]ReadinessCheck
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewServer creates a new HTTP server. db may be nil when no component uses SQL storage.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Server{
		db:     db,
		logger: logger,
		checks: make(map[string]ReadinessCheck),
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		baseCtx: baseCtx,
		cancel:  cancel,
	}
}

// AddReadinessCheck registers a component reported by /ready and /ops/healthcheck.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

// SetupRouter configures the Gin router with every route and middleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	authUseCase authUseCase.AuthUseCase,
	tokenHandler *tokenHTTP.TokenHandler,
	identityHandler *identityHTTP.IdentityHandler,
	keyHandler *keysHTTP.KeyHandler,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/ops/healthcheck", s.opsHealthCheckHandler)

	var rateLimiter gin.HandlerFunc
	if cfg.RateLimitEnabled {
		rateLimiter = authHTTP.RateLimitMiddleware(
			s.baseCtx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		)
	}

	withRole := func(role authDomain.Role, handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{
			authHTTP.AuthenticationMiddleware(authUseCase, s.logger),
			authHTTP.RequireRole(role, s.logger),
		}
		if rateLimiter != nil {
			chain = append(chain, rateLimiter)
		}
		return append(chain, handler)
	}
	anonymous := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{authHTTP.OptionalAuthenticationMiddleware(authUseCase, s.logger)}
		if rateLimiter != nil {
			chain = append(chain, rateLimiter)
		}
		return append(chain, handler)
	}

	v1 := router.Group("/v1")
	{
		token := v1.Group("/token")
		{
			token.GET("/generate", withRole(authDomain.RoleGenerator, tokenHandler.GenerateHandler)...)
			token.GET("/validate", anonymous(tokenHandler.ValidateHandler)...)
			token.GET("/refresh-back", anonymous(tokenHandler.RefreshBackHandler)...)
			token.GET("/refresh", anonymous(tokenHandler.RefreshHandler)...)
		}

		identity := v1.Group("/identity")
		{
			identity.GET("/map", withRole(authDomain.RoleMapper, identityHandler.MapHandler)...)
			identity.POST("/map", withRole(authDomain.RoleMapper, identityHandler.MapBatchHandler)...)
			identity.GET("/buckets", withRole(authDomain.RoleMapper, identityHandler.BucketsHandler)...)
		}

		v1.GET("/key/latest", withRole(authDomain.RoleIDReader, keyHandler.ListHandler)...)
	}

	router.GET("/token/logout", withRole(authDomain.RoleOptOut, tokenHandler.LogoutHandler)...)

	if cfg.LegacyAPIEnabled {
		s.logger.Warn("deprecated unversioned endpoints are enabled")

		router.GET("/key/latest", withRole(authDomain.RoleIDReader, keyHandler.LegacyListHandler)...)
		router.GET("/token/generate", withRole(authDomain.RoleGenerator, tokenHandler.LegacyGenerateHandler)...)
		router.GET("/token/refresh", anonymous(tokenHandler.LegacyRefreshHandler)...)
		router.GET("/token/validate", anonymous(tokenHandler.LegacyValidateHandler)...)
		router.GET("/identity/map", withRole(authDomain.RoleMapper, identityHandler.LegacyMapHandler)...)
		router.POST("/identity/map", withRole(authDomain.RoleMapper, identityHandler.LegacyMapBatchHandler)...)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports that the process is alive.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports every component and answers 503 when any of them is not ready.
func (s *Server) readinessHandler(c *gin.Context) {
	components, ready := s.checkComponents(c.Request.Context())

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// opsHealthCheckHandler answers "OK", or 503 naming the failing components.
func (s *Server) opsHealthCheckHandler(c *gin.Context) {
	components, ready := s.checkComponents(c.Request.Context())
	if ready {
		c.String(http.StatusOK, "OK")
		return
	}

	var failing []string
	for name, state := range components {
		if state != "ok" {
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)
	c.String(http.StatusServiceUnavailable, "not ready: "+strings.Join(failing, ", "))
}

func (s *Server) checkComponents(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.checks)+1)
	ready := true

	if s.db != nil {
		components["database"] = "ok"
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		}
	}

	for name, check := range s.checks {
		components[name] = "ok"
		if !check(ctx) {
			components[name] = "error"
			ready = false
		}
	}

	return components, ready
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured, call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server and stops its background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	defer s.cancel()
	return s.server.Shutdown(ctx)
}
