package http

import (
	"net/http"
	"strings"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	reportSvc service.ReportService
}

func NewRentalHandler(rentalSvc service.RentalService, reportSvc service.ReportService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, reportSvc: reportSvc}
}

type rentRequest struct {
	EquipmentID  int32 `json:"equipment_id"`
	Quantity     int32 `json:"quantity"`
	DurationDays int   `json:"duration_days"`
}

func (h *RentalHandler) Rent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	var req rentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentalSvc.Rent(r.Context(), actor.UserID, req.EquipmentID, req.Quantity, req.DurationDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	view, err := h.reportSvc.UserRentals(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RentalHandler) ReturnMine(w http.ResponseWriter, r *http.Request) {
	h.returnRental(w, r, true)
}

func (h *RentalHandler) AdminReturn(w http.ResponseWriter, r *http.Request) {
	h.returnRental(w, r, false)
}

func (h *RentalHandler) returnRental(w http.ResponseWriter, r *http.Request, requireOwnership bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentalSvc.ReturnRental(r.Context(), id, actor.UserID, requireOwnership)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RentalFilter{
		Status: domain.RentalStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		Search: strings.TrimSpace(q.Get("search")),
	}
	view, err := h.reportSvc.AdminRentals(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
