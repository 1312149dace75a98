package handler

import (
	"log/slog"
	"net/http"

	"github.com/colaunch/colaunch-server/internal/legacy"
	"github.com/colaunch/colaunch-server/internal/model"
)

// LegacyHandler serves /api/legacy: the asset-registration surface kept
// for clients of the retired product.
type LegacyHandler struct {
	svc    *legacy.Service
	logger *slog.Logger
}

func NewLegacyHandler(svc *legacy.Service, logger *slog.Logger) *LegacyHandler {
	return &LegacyHandler{svc: svc, logger: logger}
}

// HandleRegisterGame serves POST /api/legacy/games
func (h *LegacyHandler) HandleRegisterGame(w http.ResponseWriter, r *http.Request) {
	var game model.GameData
	if err := decodeJSON(r, &game); err != nil {
		writeError(w, err)
		return
	}
	registered, err := h.svc.RegisterGame(r.Context(), &game)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}

// HandleRegisterToken serves POST /api/legacy/tokens
func (h *LegacyHandler) HandleRegisterToken(w http.ResponseWriter, r *http.Request) {
	var token model.TokenData
	if err := decodeJSON(r, &token); err != nil {
		writeError(w, err)
		return
	}
	registered, err := h.svc.RegisterToken(r.Context(), &token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}

// HandleRegisterCollection serves POST /api/legacy/collections
func (h *LegacyHandler) HandleRegisterCollection(w http.ResponseWriter, r *http.Request) {
	var col model.CollectionData
	if err := decodeJSON(r, &col); err != nil {
		writeError(w, err)
		return
	}
	registered, err := h.svc.RegisterCollection(r.Context(), &col)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}

// HandleRegisterNFT serves POST /api/legacy/nfts
func (h *LegacyHandler) HandleRegisterNFT(w http.ResponseWriter, r *http.Request) {
	var nft model.NFTData
	if err := decodeJSON(r, &nft); err != nil {
		writeError(w, err)
		return
	}
	registered, err := h.svc.RegisterNFT(r.Context(), &nft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}
