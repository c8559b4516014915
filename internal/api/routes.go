package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/lunar-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health
//	GET  /api/v1/calendar/range
//	GET  /api/v1/convert/solar/{date}
//	GET  /api/v1/convert/solar?start=&end=
//	GET  /api/v1/convert/lunar?year=&month=&day=&leap=
//	GET  /api/v1/lunar/years/{year}
//	POST /api/v1/admin/table/reload   (X-API-Key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RequestIDMiddleware(),
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calendar/range", handlers.GetRange)
		r.Get("/convert/solar", handlers.ConvertSolarRange)
		r.Get("/convert/solar/{date}", handlers.ConvertSolarDate)
		r.Get("/convert/lunar", handlers.ConvertLunarDate)
		r.Get("/lunar/years/{year}", handlers.GetLunarYear)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Post("/table/reload", handlers.ReloadTable)
		})
	})

	return r
}
