package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wilson12358/daybook/infrastructure/di"
	"github.com/wilson12358/daybook/interfaces/http/rest/handlers"
	"github.com/wilson12358/daybook/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	cfg := rt.container.Config

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.container.Metrics))
	}

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.daybook.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(
			rt.container.Metrics.Registry(),
			promhttp.HandlerOpts{},
		))
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.container.JWTValidator, rt.container.RateLimiter, rt.logger))
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api"), rt.logger))

		// Entry endpoints
		r.Route("/entries", func(r chi.Router) {
			entryHandler := handlers.NewEntryHandler(rt.container.EntryService, rt.logger)
			r.Post("/", entryHandler.CreateEntry)
			r.Get("/", entryHandler.ListEntries)
			r.Put("/{entryID}", entryHandler.UpdateEntry)
			r.Delete("/{entryID}", entryHandler.DeleteEntry)
			r.Post("/bulk-delete", entryHandler.BulkDeleteEntries)
			r.Get("/day/{date}", entryHandler.EntriesOnDay)
			r.Get("/month/{month}", entryHandler.EntriesInMonth)
			r.Get("/recent-tags", entryHandler.RecentTags)
			r.Get("/count", entryHandler.Count)
		})

		// Search endpoints
		r.Route("/search", func(r chi.Router) {
			searchHandler := handlers.NewSearchHandler(rt.container.SearchService, rt.logger)
			r.Get("/", searchHandler.Search)
			r.Get("/suggest", searchHandler.Suggest)
		})

		// Session endpoints
		sessionHandler := handlers.NewSessionHandler(rt.container.Caches.Hub, rt.container.SearchService, rt.logger)
		r.Post("/session/sign-out", sessionHandler.SignOut)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
