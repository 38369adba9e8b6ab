// Package server wires the HTTP surface: parse endpoint, recipe collection,
// health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/infrastructure/http/handlers"
	"github.com/recipebox/recipebox/internal/infrastructure/http/middleware"
	"github.com/recipebox/recipebox/internal/infrastructure/monitoring"
	"github.com/recipebox/recipebox/pkg/healthcheck"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	router  *chi.Mux
	server  *http.Server
	parse   *handlers.ParseAPIHandlers
	recipes *handlers.RecipeAPIHandlers
	health  *healthcheck.HealthCheck
	metrics *monitoring.MetricsCollector
	auth    middleware.TokenValidator
	limiter *middleware.RateLimiter
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	parse *handlers.ParseAPIHandlers,
	recipes *handlers.RecipeAPIHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
	auth middleware.TokenValidator,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger.Named("http-server"),
		parse:   parse,
		recipes: recipes,
		health:  health,
		metrics: metrics,
		auth:    auth,
		limiter: middleware.NewRateLimiter(cfg.Server.ParseRatePerMin, cfg.Server.ParseBurst, logger),
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           otelhttp.NewHandler(s.router, "recipebox-api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(s.metrics.HTTPMiddleware)
	r.Use(middleware.Security())

	r.Get("/health", s.health.Handler())
	if s.config.Monitoring.EnableMetrics {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if s.config.Server.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
		}
		if s.config.Server.MaxBodyBytes > 0 {
			r.Use(chimiddleware.RequestSize(s.config.Server.MaxBodyBytes))
		}
		r.Use(middleware.Authenticate(s.auth))
		s.setupAPIRoutes(r)
	})

	return r
}

func (s *Server) setupAPIRoutes(r chi.Router) {
	r.With(s.limiter.Middleware).Post("/parse-recipe", s.parse.ParseRecipe)

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", s.recipes.ListRecipes)
		r.With(middleware.RequireUser).Get("/mine", s.recipes.ListMyRecipes)
		r.Get("/{id}", s.recipes.GetRecipe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/", s.recipes.CreateRecipe)
			r.Put("/{id}", s.recipes.UpdateRecipe)
			r.Post("/{id}/publish", s.recipes.PublishRecipe)
			r.Post("/{id}/unpublish", s.recipes.UnpublishRecipe)
		})
	})
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := http2.ConfigureServer(s.server, nil); err != nil {
		s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
