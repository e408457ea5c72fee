package http

import (
	"context"
	"net/http"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/service"
)

type DashboardHandler struct {
	reportSvc service.ReportService
}

func NewDashboardHandler(reportSvc service.ReportService) *DashboardHandler {
	return &DashboardHandler{reportSvc: reportSvc}
}

func (h *DashboardHandler) User(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	view, err := h.reportSvc.UserDashboard(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	view, err := h.reportSvc.AdminDashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func healthz(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
