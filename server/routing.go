package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// defaultOrigins apply when no origins are configured.
var defaultOrigins = []string{"http://localhost", "https://localhost", "http://127.0.0.1"}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware(s.allowedOrigins()))

	// The WebSocket upgrade needs the raw writer, so it sits outside instrumentation.
	r.Get("/ws", s.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(s.metrics.instrument)

		r.Get("/health", s.HandleHealth)
		r.Method(http.MethodGet, "/metrics", s.metrics.handler())

		r.Route("/api", func(r chi.Router) {
			r.Get("/resolve", s.HandleResolve)
			r.Get("/search", s.HandleSearch)
			r.Get("/icon", s.HandleIcon)
			r.Get("/backlinks", s.HandleBacklinks)
			r.Get("/stats", s.HandleStats)
			r.Post("/ingest", s.HandleIngest)
		})
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return defaultOrigins
	}
	return s.cfg.AllowedOrigins
}

// corsMiddleware allows the configured origins on any port.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return originAllowed(origin, origins)
		},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// originAllowed reports whether origin has the scheme and host of an allowed
// origin. An allowed origin without a port accepts any port.
func originAllowed(origin string, allowed []string) bool {
	o, err := url.Parse(origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return false
	}
	for _, a := range allowed {
		u, err := url.Parse(a)
		if err != nil || u.Host == "" {
			continue
		}
		if !strings.EqualFold(o.Scheme, u.Scheme) || !strings.EqualFold(o.Hostname(), u.Hostname()) {
			continue
		}
		if u.Port() == "" || u.Port() == o.Port() {
			return true
		}
	}
	return false
}
