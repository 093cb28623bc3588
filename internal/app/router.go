package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/brasa-analytics/brasa/internal/observability"
	"github.com/brasa-analytics/brasa/internal/platform/httpx"
)

// Mounter registers a module's routes onto a router.
type Mounter interface {
	MountRoutes(r chi.Router)
}

// RouterConfig carries everything the HTTP surface mounts.
type RouterConfig struct {
	Middleware []func(http.Handler) http.Handler
	Metrics    *observability.Metrics

	// API modules mounted under /api.
	Dashboard  Mounter
	Products   Mounter
	Customers  Mounter
	Operations Mounter
	Query      Mounter

	// Jobs exposes queue observability under /jobs.
	Jobs Mounter
}

// NewRouter assembles the chi router for the API binary.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		mount(api, cfg.Dashboard)
		mount(api, cfg.Products)
		mount(api, cfg.Customers)
		mount(api, cfg.Operations)

		// The ad-hoc explorer runs arbitrary whitelisted aggregations, so it
		// gets a tighter per-IP budget than the cached dashboards.
		if cfg.Query != nil {
			api.Group(func(gr chi.Router) {
				gr.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
				cfg.Query.MountRoutes(gr)
			})
		}
	})

	if cfg.Jobs != nil {
		r.Route("/jobs", cfg.Jobs.MountRoutes)
	}

	return r
}

func mount(r chi.Router, m Mounter) {
	if m != nil {
		m.MountRoutes(r)
	}
}
