package handler

import (
	"net/http"

	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"
	"github.com/boddenberg/pennybank-bfa-go/internal/presenter"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func dashboardHandler(dashboard port.DashboardFetcher, defaultLimit int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		limit, err := parseLimit(r, defaultLimit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("dashboard.limit", limit))

		dash, err := dashboard.FetchDashboard(ctx, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

func profileHandler(profiles port.ProfileGetter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		profile, err := profiles.GetUserProfile(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func refreshProfileHandler(cache port.ProfileRefresher, profiles port.ProfileGetter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/refresh")
		defer span.End()

		cache.InvalidateProfile()
		profile, err := profiles.GetUserProfile(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func dashboardMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}

type memberCodeResponse struct {
	Payload string             `json:"payload"`
	Kind    presenter.CodeKind `json:"kind"`
}

func memberCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, memberCodeResponse{
			Payload: presenter.MemberCode,
			Kind:    presenter.ClassifyCode(presenter.MemberCode),
		})
	}
}
