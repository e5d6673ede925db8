package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"
	"github.com/boddenberg/pennybank-bfa-go/internal/presenter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("handler")

// Services are the use cases the router exposes.
type Services struct {
	Dashboard        port.DashboardFetcher
	Profiles         port.ProfileGetter
	ProfileCache     port.ProfileRefresher
	Sessions         *presenter.Registry
	TransactionLimit int
}

// NewRouter creates the HTTP router with all routes and middleware.
// A nil limiter disables rate limiting.
func NewRouter(svc Services, limiter *rate.Limiter, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Profiles, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter, logger))
		}

		r.Get("/dashboard", dashboardHandler(svc.Dashboard, svc.TransactionLimit, logger))
		r.Get("/profile", profileHandler(svc.Profiles, logger))
		if svc.ProfileCache != nil {
			r.Post("/profile/refresh", refreshProfileHandler(svc.ProfileCache, svc.Profiles, logger))
		}
		r.Get("/metrics/dashboard", dashboardMetricsHandler(metrics))
		r.Get("/qr/me", memberCodeHandler())

		r.Post("/sessions", createSessionHandler(svc.Sessions, logger))
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Use(sessionMiddleware(svc.Sessions))

			r.Delete("/", closeSessionHandler(svc.Sessions))
			r.Get("/home", homeStateHandler())
			r.Post("/home/balance-visibility", toggleBalanceHandler())
			r.Get("/profile", profileStateHandler())
			r.Get("/scan", scanStateHandler())
			r.Post("/scan", scanCodeHandler(logger))
			r.Delete("/scan", dismissScanHandler())
			r.Post("/scan/report", reportScanHandler())
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(profiles port.ProfileGetter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pennybank-bfa", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if profiles != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			start := time.Now()
			_, err := profiles.GetUserProfile(ctx)
			status := "healthy"
			if err != nil {
				logger.Warn("health check: profile source degraded", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "profile-source", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = s.Status
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
