package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"procuration/internal/platform/metrics"
	"procuration/pkg/platform/httputil"
	"procuration/pkg/platform/middleware/admin"
	"procuration/pkg/platform/middleware/auth"
	"procuration/pkg/platform/middleware/metadata"
	request "procuration/pkg/platform/middleware/request"
	"procuration/pkg/platform/middleware/requesttime"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RouterConfig carries what the middleware chain needs besides the handler.
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Sessions auth.SessionValidator
	// CookieName must match the cookie the handler sets.
	CookieName string
	TrustProxy bool
	// AdminToken enables the /admin routes when non-empty.
	AdminToken string
	// Health is nil when there is nothing external to check.
	Health HealthChecker
}

// NewRouter wires the middleware chain, the lifecycle routes and the
// operational endpoints.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(cfg.Health))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(request.Latency(cfg.Metrics))
		r.Use(metadata.ClientOrigin(cfg.TrustProxy))
		r.Use(auth.LoadSession(cfg.Sessions, cfg.CookieName, logger))
		h.Register(r)
	})

	if cfg.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(request.Latency(cfg.Metrics))
			r.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
			h.RegisterAdmin(r)
		})
	}

	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Health(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: "store unreachable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
