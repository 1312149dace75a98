package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/service"
)

// OfferHandler serves /api/offers.
type OfferHandler struct {
	offers *service.OfferService
	logger *slog.Logger
}

func NewOfferHandler(offers *service.OfferService, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

// HandleCreate serves POST /api/offers
func (h *OfferHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var offer model.Offer
	if err := decodeJSON(r, &offer); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.offers.Create(r.Context(), userID, &offer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGet serves GET /api/offers/{id}
func (h *OfferHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// HandleGetByIdea serves GET /api/ideas/{id}/offer
func (h *OfferHandler) HandleGetByIdea(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offers.GetByIdea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// HandleListMine serves GET /api/offers/mine
func (h *OfferHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	offers, err := h.offers.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

// HandleUpdate serves PUT /api/offers/{id}
func (h *OfferHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var offer model.Offer
	if err := decodeJSON(r, &offer); err != nil {
		writeError(w, err)
		return
	}
	offer.ID = chi.URLParam(r, "id")

	updated, err := h.offers.Update(r.Context(), userID, &offer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete serves DELETE /api/offers/{id}
func (h *OfferHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.offers.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
