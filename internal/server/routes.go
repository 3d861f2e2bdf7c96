package server

import "github.com/go-chi/chi/v5"

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	s.router.Get("/health", s.health.ServeHTTP)
	s.router.Get("/version", s.version.ServeHTTP)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/quota/{policy}/{subject}", s.quota.Check)
		r.Post("/quota/{policy}/{subject}/consume", s.quota.Consume)
		r.Post("/fetch", s.fetcher.Fetch)
	})
}
