// Package web provides the HTTP server and handlers for the birth matrix UI and API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/birthmatrix/internal/config"
	"github.com/JonMunkholm/birthmatrix/internal/core"
	webmw "github.com/JonMunkholm/birthmatrix/internal/web/middleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server is the HTTP server for the birth matrix application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	checks   map[string]HealthCheck
	metrics  http.Handler
	limiters []*rateLimiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHealthCheck adds a named dependency check to /healthz.
func WithHealthCheck(name string, check HealthCheck) ServerOption {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// WithMetricsHandler overrides the handler mounted on /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		checks:  make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil && cfg.Server.MetricsEnabled {
		s.metrics = promhttp.Handler()
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)

	s.router.Use(s.rateLimit(s.cfg.Rate.RequestsPerMinute))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	calculateLimit := s.rateLimit(s.cfg.Rate.CalculateLimit)

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.With(calculateLimit).Get("/matrix", s.handleMatrixPage)

	// Health and metrics
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(calculateLimit)
			r.Get("/calculate", s.handleCalculate)
			r.Post("/calculate", s.handleCalculatePost)
			r.Get("/forecast", s.handleForecast)

			r.Post("/family", s.handleCreateFamily)
			r.Route("/family/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFamily)
				r.Delete("/", s.handleDeleteFamily)
				r.Post("/members", s.handleAddMember)
				r.Put("/members/{memberID}", s.handleUpdateMember)
				r.Delete("/members/{memberID}", s.handleRemoveMember)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(webmw.APIKeyAuth(&s.cfg.Security))
			r.Get("/history", s.handleListHistory)
			r.Get("/history/{id}", s.handleHistoryEntry)
		})
	})
}

// rateLimit returns a per-IP limiter middleware allowing perMinute requests.
// Every route using the returned middleware shares one budget.
func (s *Server) rateLimit(perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl.middleware
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background sweepers.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Pages carry one inline stylesheet and no scripts.
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'")
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
