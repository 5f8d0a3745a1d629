// Package server serves public portfolio pages and a small read-only JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"proedualt/internal/backend"
	"proedualt/internal/config"
	"proedualt/internal/errors"
	"proedualt/internal/observability"
	"proedualt/internal/portfolio"
	"proedualt/internal/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PortfolioLoader produces portfolio views. *portfolio.Renderer satisfies it.
type PortfolioLoader interface {
	Load(ctx context.Context, handle string) portfolio.View
}

// JobLister lists open positions. *jobs.Board satisfies it.
type JobLister interface {
	List(ctx context.Context) ([]types.Job, error)
}

// Dependencies are the collaborators the site reads from
type Dependencies struct {
	Version       string
	Portfolios    PortfolioLoader
	Jobs          JobLister
	Breaker       *backend.CircuitBreaker
	Observability *observability.ObservabilityManager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	AllowedOrigins []string

	// Rate limiting
	RateLimit   config.RateLimitConfig
	RateLimiter *LimiterManager

	Logger *errors.Logger

	portfolios PortfolioLoader
	jobs       JobLister
	breaker    *backend.CircuitBreaker
	om         *observability.ObservabilityManager
	handler    http.Handler
}

// NewServer creates a Server from the server section of the configuration
func NewServer(cfg config.ServerConfig, deps Dependencies, logger *errors.Logger) *Server {
	var rateLimiter *LimiterManager
	if cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        deps.Version,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		portfolios:     deps.Portfolios,
		jobs:           deps.Jobs,
		breaker:        deps.Breaker,
		om:             deps.Observability,
	}
	s.handler = s.om.HTTPMiddleware()(s.setupRoutes())
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}
