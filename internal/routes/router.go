package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planche-electronique/cepo/internal/api"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/middleware"
)

// RegisterRoutes builds the HTTP handler. gatherer backs /metrics; pass
// prometheus.DefaultGatherer in production.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	origins := deps.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Origin", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	if deps.Usage != nil {
		r.Use(middleware.UsageLimitMiddleware(deps.Usage, deps.Metrics))
	}
	if deps.Config.AppEnv != "production" {
		r.Use(middleware.Logging)
	}

	handlers := api.NewHandlers(deps)

	r.Get("/healthCheck", handlers.HealthCheckHandler())
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.InFlightMiddleware(deps.Metrics))

		r.Get("/flightlog", handlers.GetFlightLogHandler())
		r.Get("/updates", handlers.GetUpdatesHandler())
		r.Post("/updates", handlers.PostUpdateHandler())
		r.Post("/majs", handlers.PostUpdateHandler())
		r.Get("/infos", handlers.GetInfosHandler())
		r.Get("/stats/gliders", handlers.GetGliderStatsHandler())
	})

	logging.Info("Router initialized", "cors_origins", origins, "archive", deps.Archive != nil)
	return r
}
