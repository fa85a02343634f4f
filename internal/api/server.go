// Package api provides the HTTP REST API for netsentinel. It serves scan
// results, alerts, AI commentary, notification settings and reports.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/anstrom/netsentinel/docs/swagger" // Register generated swagger docs
	apihandlers "github.com/anstrom/netsentinel/internal/api/handlers"
	"github.com/anstrom/netsentinel/internal/api/middleware"
	"github.com/anstrom/netsentinel/internal/auth"
	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/metrics"
)

const serverShutdownTimeout = 30 * time.Second

// Server represents the API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *logging.Logger
	metrics    *metrics.PrometheusMetrics
	limiter    *middleware.RateLimiter
}

// New creates a new API server. pm may be nil, in which case no metrics are
// recorded and the metrics endpoint is not mounted.
func New(cfg *config.Config, deps apihandlers.Dependencies, pm *metrics.PrometheusMetrics) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := logging.OrDefault(deps.Logger).WithComponent("api")
	deps.Logger = logger
	if deps.AlertListLimit == 0 {
		deps.AlertListLimit = cfg.Alerts.ListLimit
	}

	s := &Server{
		router:  mux.NewRouter(),
		config:  cfg,
		logger:  logger,
		metrics: pm,
	}
	if cfg.API.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.API.RateLimit.RequestsPerSecond, cfg.API.RateLimit.Burst)
	}

	if err := s.setupRoutes(apihandlers.New(deps)); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:           net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port)),
		Handler:        s.handler(),
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
		IdleTimeout:    cfg.API.IdleTimeout,
		MaxHeaderBytes: cfg.API.MaxHeaderBytes,
	}

	return s, nil
}

// Start serves until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server",
		"address", s.httpServer.Addr,
		"auth_enabled", s.config.API.AuthEnabled,
		"write_timeout", s.httpServer.WriteTimeout)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errChan:
		return err
	}
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("API server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped successfully")
	return nil
}

// Handler returns the complete HTTP handler including CORS.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// GetAddress returns the server address.
func (s *Server) GetAddress() string {
	return s.httpServer.Addr
}

// setupRoutes configures the router. Everything under /api except the
// health check sits behind authentication when it is enabled; the index,
// metrics and docs are public.
func (s *Server) setupRoutes(hm *apihandlers.HandlerManager) error {
	apiCfg := s.config.API

	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Recovery(s.logger))
	if s.config.Logging.RequestLogging {
		s.router.Use(middleware.Logging(s.logger))
	}
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}
	s.router.Use(middleware.SecurityHeaders())
	if s.limiter != nil {
		s.router.Use(middleware.RateLimit(s.limiter, s.logger))
	}

	s.router.HandleFunc("/", hm.Index).Methods(http.MethodGet)

	if s.metrics != nil && s.config.Metrics.Enabled {
		s.router.Handle(s.config.Metrics.Path, promhttp.HandlerFor(
			s.metrics.GetRegistry(),
			promhttp.HandlerOpts{Registry: s.metrics.GetRegistry()},
		)).Methods(http.MethodGet)
	}

	s.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	))
	s.router.HandleFunc("/docs", redirectToSwagger).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	if apiCfg.AuthEnabled {
		keys := auth.NewKeyRing(apiCfg.APIKeys)
		if keys.Len() == 0 {
			return fmt.Errorf("authentication enabled but no API key hashes configured")
		}
		api.Use(middleware.Authentication(keys, []string{"/api/health"}, s.logger))
	}
	api.Use(middleware.ContentType())
	api.Use(middleware.MaxBodySize(apiCfg.MaxRequestSize))

	hm.RegisterRoutes(api)
	return nil
}

// handler wraps the router with CORS so preflight requests are answered
// before route matching.
func (s *Server) handler() http.Handler {
	cors := s.config.API.CORS
	if !cors.Enabled {
		return s.router
	}
	return handlers.CORS(
		handlers.AllowedOrigins(cors.AllowedOrigins),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.APIKeyHeader, middleware.RequestIDHeader}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader, "Content-Disposition"}),
	)(s.router)
}

func redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
}
