// Package httptransport assembles the public HTTP surface: entity routes
// under /api/v1, health and Prometheus metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"spoolman/internal/platform/metrics"
	"spoolman/internal/platform/middleware"
	"spoolman/pkg/platform/httputil"
)

const healthTimeout = 2 * time.Second

// Routes is implemented by each resource handler.
type Routes interface {
	Register(r chi.Router)
}

// Check probes one dependency for /health.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Config carries what the router needs besides the resource handlers.
type Config struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Checks   []Check
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter mounts every handler under /api/v1.
func NewRouter(cfg Config, handlers ...Routes) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health(cfg.Checks))
		for _, h := range handlers {
			h.Register(r)
		}
	})
	return r
}

// health runs every check concurrently. Any failure turns the response
// into a 503 naming the failed dependency.
func health(checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			failed = map[string]string{}
		)
		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				if err := c.Probe(ctx); err != nil {
					mu.Lock()
					failed[c.Name] = err.Error()
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		if len(failed) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Checks: failed})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
	}
}
