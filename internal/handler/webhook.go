package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/service"
)

// WebhookHandler serves /api/webhooks.
type WebhookHandler struct {
	webhooks *service.WebhookService
	logger   *slog.Logger
}

func NewWebhookHandler(webhooks *service.WebhookService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, logger: logger}
}

// createWebhookResponse carries the one-time plaintext secret alongside
// the stored webhook. It is never returned again.
type createWebhookResponse struct {
	Webhook *model.Webhook `json:"webhook"`
	Secret  string         `json:"secret"`
}

// HandleCreate serves POST /api/webhooks with body {"url": "..."}.
func (h *WebhookHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	hook, secret, err := h.webhooks.Create(r.Context(), userID, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createWebhookResponse{Webhook: hook, Secret: secret})
}

// HandleList serves GET /api/webhooks
func (h *WebhookHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	hooks, err := h.webhooks.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hooks)
}

// HandleSetActive serves PUT /api/webhooks/{id}/active with body
// {"active": true|false}.
func (h *WebhookHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	hook, err := h.webhooks.SetActive(r.Context(), userID, chi.URLParam(r, "id"), req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

// HandleDelete serves DELETE /api/webhooks/{id}
func (h *WebhookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.webhooks.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify serves POST /api/webhooks/{id}/verify with body
// {"secret": "..."}; partners use it to confirm the secret they hold.
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.webhooks.VerifySecret(r.Context(), chi.URLParam(r, "id"), req.Secret); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
