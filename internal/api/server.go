// Package api serves the market snapshot and asset list in the dashboard's envelope format.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/market"
	"github.com/insight-sphere/internal/types"
)

// ServiceName is reported by the health endpoints
const ServiceName = "InsightSphere API"

// CacheStatusSource reports the state of the upstream response cache
type CacheStatusSource interface {
	Status(ctx context.Context) (*types.CacheStatus, error)
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	provider   market.Provider
	cache      CacheStatusSource
	limiter    *RateLimiter
	config     *ServerConfig
	logger     *logging.Logger
	now        func() time.Time
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestsPerSecond int
	Burst             int
}

// NewServer creates a new API server instance. cache may be nil when the server
// runs without Redis.
func NewServer(config *ServerConfig, provider market.Provider, cache CacheStatusSource, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	s := &Server{
		router:   mux.NewRouter(),
		provider: provider,
		cache:    cache,
		limiter:  NewRateLimiter(config.RequestsPerSecond, config.Burst),
		config:   config,
		logger:   logger.Component("api"),
		now:      time.Now,
	}

	s.setupRouter()
	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	// order matters: the request logger must exist before anything logs
	s.router.Use(RequestIDMiddleware(s.logger))
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(s.limiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet, http.MethodOptions)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/global", s.handleGlobal).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/top-cryptos", s.handleTopCryptos).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/cache-status", s.handleCacheStatus).Methods(http.MethodGet, http.MethodOptions)

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	go s.limiter.RunJanitor(ctx, 5*time.Minute, 10*time.Minute)

	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
