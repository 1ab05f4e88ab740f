package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. allowedOrigins come from config so
// deployments can whitelist their own front-end hosts.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Post("/bulk", h.HandleBulkCreate)
			r.Get("/bulk/template", h.HandleTemplate)

			r.Route("/{leadID}", func(r chi.Router) {
				r.Get("/timeline", h.HandleTimeline)
				r.Get("/activity-types", h.HandleActivityTypes)
			})
		})

		r.Route("/imports", func(r chi.Router) {
			r.Get("/", h.HandleListImports)
			r.Get("/progress", h.HandleImportProgress)
			r.Get("/{importID}", h.HandleGetImport)
			r.Post("/scan", h.HandleTriggerScan)
		})
	})

	return r
}
