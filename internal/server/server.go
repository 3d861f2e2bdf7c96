// Package server exposes the quota tracker and fetch client over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/quotafence/quotafence/internal/config"
	"github.com/quotafence/quotafence/internal/server/handlers"
	servermw "github.com/quotafence/quotafence/internal/server/middleware"
)

// Server represents the HTTP facade.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger

	quota   *handlers.QuotaHandler
	fetcher *handlers.FetchHandler
	health  *handlers.HealthHandler
	version *handlers.VersionHandler
}

// New creates a new HTTP facade instance.
func New(cfg config.ServerConfig, logger *zap.Logger, deps handlers.Deps) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.Logging(logger))
	r.Use(servermw.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handlers.RespondError(w, req, http.StatusNotFound, "NOT_FOUND", "the requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		handlers.RespondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "the requested method is not allowed for this resource")
	})

	s := &Server{
		router:  r,
		cfg:     cfg,
		logger:  logger,
		quota:   &handlers.QuotaHandler{Tracker: deps.Tracker, Logger: logger},
		fetcher: &handlers.FetchHandler{Client: deps.Fetcher},
		health:  &handlers.HealthHandler{Version: deps.Version, Checkers: deps.HealthCheckers},
		version: &handlers.VersionHandler{Version: deps.Version, Commit: deps.Commit, BuildDate: deps.BuildDate},
	}

	s.registerRoutes()

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.logger.Info("starting HTTP server",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation.
func (s *Server) Handler() http.Handler {
	return s.router
}
