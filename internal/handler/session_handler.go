package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/presenter"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type sessionKey struct{}

// sessionMiddleware resolves {sessionId} and answers 404 for unknown or
// expired sessions.
func sessionMiddleware(sessions *presenter.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := sessions.Get(chi.URLParam(r, "sessionId"))
			if !ok {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

func sessionFrom(r *http.Request) *presenter.Session {
	return r.Context().Value(sessionKey{}).(*presenter.Session)
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

func createSessionHandler(sessions *presenter.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions")
		defer span.End()

		s := sessions.Create(ctx)
		logger.Info("session created", zap.String("session_id", s.ID))
		writeJSON(w, http.StatusCreated, sessionResponse{
			SessionID: s.ID,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		})
	}
}

func closeSessionHandler(sessions *presenter.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Close(sessionFrom(r).ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Home
// ============================================================

func homeStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		home := sessionFrom(r).Home
		if r.URL.Query().Get("wait") == "true" {
			select {
			case <-home.Done():
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, http.StatusOK, home.CurrentDisplayState())
	}
}

func toggleBalanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		home := sessionFrom(r).Home
		home.ToggleBalanceVisibility()
		writeJSON(w, http.StatusOK, home.CurrentDisplayState())
	}
}

// ============================================================
// Profile
// ============================================================

func profileStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := sessionFrom(r).Profile
		if r.URL.Query().Get("wait") == "true" {
			select {
			case <-profile.Done():
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, http.StatusOK, profile.CurrentDisplayState())
	}
}

// ============================================================
// Scan
// ============================================================

type scanRequest struct {
	Code string `json:"code"`
}

type scanResponse struct {
	Accepted bool                `json:"accepted"`
	State    presenter.ScanState `json:"state"`
}

type scanReportRequest struct {
	Reason string `json:"reason"`
}

// Scan report reasons.
const (
	reasonNoCode       = "no_code"
	reasonDecodeFailed = "decode_failed"
)

func scanStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionFrom(r).Scan.CurrentDisplayState())
	}
}

func scanCodeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "body", Message: "invalid JSON"}, logger)
			return
		}

		scan := sessionFrom(r).Scan
		accepted := scan.HandleScannedCode(req.Code)
		writeJSON(w, http.StatusOK, scanResponse{Accepted: accepted, State: scan.CurrentDisplayState()})
	}
}

func dismissScanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scan := sessionFrom(r).Scan
		scan.Dismiss()
		writeJSON(w, http.StatusOK, scan.CurrentDisplayState())
	}
}

// reportScanHandler records the outcome of decoding a picked image. An empty
// reason clears the current message.
func reportScanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scanReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		scan := sessionFrom(r).Scan
		switch req.Reason {
		case reasonNoCode:
			scan.ReportNoCode()
		case reasonDecodeFailed:
			scan.ReportDecodeFailure()
		case "":
			scan.ClearError()
		default:
			writeError(w, http.StatusBadRequest, "unknown reason: "+req.Reason)
			return
		}
		writeJSON(w, http.StatusOK, scan.CurrentDisplayState())
	}
}
