// Package api provides the HTTP API for the ad studio configuration service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rhedu/adstudio-server/internal/config"
	"github.com/rhedu/adstudio-server/internal/ratelimit"
	"github.com/rhedu/adstudio-server/internal/resolver"
	"github.com/rhedu/adstudio-server/internal/validation"
)

const (
	// pathLogin is limited per client IP.
	pathLogin      = "/api/auth/login"
	pathRevalidate = "/api/config/revalidate"
)

// Options carries the HTTP-facing settings.
type Options struct {
	Gate             config.GateConfig
	CORSAllowOrigins []string
	Production       bool
	// Limiter guards login. Nil disables rate limiting.
	Limiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	resolver  *resolver.Resolver
	validator *validation.Validator
	opts      Options
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(res *resolver.Resolver, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		resolver:  res,
		validator: validation.New(),
		opts:      opts,
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Ad Studio API", "1.0.0")
	humaConfig.Info.Description = "Channel limits, asset specs and taxonomies for ad copy generation"
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAssetRoutes()
	s.registerLimitRoutes()
	s.registerTaxonomyRoutes()
	s.registerConfigRoutes()
	s.registerAuthRoutes()
	s.registerWebhookRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API (used by tests and OpenAPI export).
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSAllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(s.passwordGate)
	if s.opts.Limiter != nil {
		s.router.Use(rateLimit(s.opts.Limiter, s.logger, pathLogin))
	}
}
