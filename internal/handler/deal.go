package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/service"
)

// DealHandler serves /api/deals.
type DealHandler struct {
	deals  *service.DealService
	logger *slog.Logger
}

func NewDealHandler(deals *service.DealService, logger *slog.Logger) *DealHandler {
	return &DealHandler{deals: deals, logger: logger}
}

// HandleCreate serves POST /api/deals with body {"offerId": "..."}.
// The caller is the accepting distributor.
func (h *DealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		OfferID string `json:"offerId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deal, err := h.deals.Create(r.Context(), userID, req.OfferID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deal)
}

// HandleGet serves GET /api/deals/{id}
func (h *DealHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	deal, err := h.deals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

// HandleListMine serves GET /api/deals/mine: deals on either side.
func (h *DealHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	deals, err := h.deals.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

// HandleSetStatus serves PUT /api/deals/{id}/status with body
// {"status": true|false}.
func (h *DealHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Status bool `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deal, err := h.deals.SetStatus(r.Context(), userID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}
