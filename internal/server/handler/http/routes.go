package http

import (
	"net/http"

	"github.com/atinyakov/GophRoster/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig carries the optional pieces of the router.
type RouterConfig struct {
	// Token is the bearer token required on /api routes; empty disables auth.
	Token string
	// Registry collects HTTP metrics and backs /metrics. Nil disables both.
	Registry *prometheus.Registry
}

// NewRouter constructs the HTTP handler serving the document store API.
//
// Routes:
//
//	GET    /api/collections/{collection}/documents       → List
//	POST   /api/collections/{collection}/documents       → Create
//	PATCH  /api/collections/{collection}/documents/{id}  → Update
//	DELETE /api/collections/{collection}/documents/{id}  → Delete
//	GET    /healthz
//	GET    /metrics (when a registry is configured)
//
// Middleware chain (applied in order): request id, panic recovery, request
// logging, metrics, token auth.
func NewRouter(docs *DocumentHandler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	if cfg.Registry != nil {
		r.Use(middleware.NewMetrics(cfg.Registry).Handler)
	}
	r.Use(middleware.TokenAuth(cfg.Token))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/collections/{collection}/documents", func(r chi.Router) {
		r.Get("/", docs.List)
		r.With(chiMiddleware.AllowContentType("application/json")).Post("/", docs.Create)
		r.With(chiMiddleware.AllowContentType("application/json")).Patch("/{id}", docs.Update)
		r.Delete("/{id}", docs.Delete)
	})

	return r
}
