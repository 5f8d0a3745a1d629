package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.healthHandler)
	r.Get("/stats", s.statsHandler)
	if h := s.om.MetricsHandler(); h != nil {
		r.Method(http.MethodGet, "/metrics", h)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Get("/p/{handle}", s.portfolioPageHandler)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.allowedOrigins(),
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			}))
			r.Get("/portfolio/{handle}", s.portfolioJSONHandler)
			r.Get("/jobs", s.jobsHandler)
		})
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.AllowedOrigins
}

// requestLogger logs each request once it completes
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}
