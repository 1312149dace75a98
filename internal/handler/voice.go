package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/voice"
)

// VoiceHandler serves /api/voice: an explicit capture session per user.
// Clients stream interim transcript chunks while the mic is open, then
// stop to run the search, or cancel to throw the session away.
type VoiceHandler struct {
	searcher voice.Searcher
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*voice.Capturer
}

func NewVoiceHandler(searcher voice.Searcher, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{
		searcher: searcher,
		logger:   logger,
		sessions: make(map[string]*voice.Capturer),
	}
}

func (h *VoiceHandler) capturer(userID string) *voice.Capturer {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.sessions[userID]
	if !ok {
		c = voice.NewCapturer(h.searcher, h.logger)
		h.sessions[userID] = c
	}
	return c
}

// HandleStart serves POST /api/voice/start
func (h *VoiceHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.capturer(userID).Start(); err != nil {
		writeError(w, apperror.Conflict("voice session", userID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": voice.StateListening.String()})
}

// HandleTranscript serves POST /api/voice/transcript with body
// {"chunk": "..."}.
func (h *VoiceHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Chunk string `json:"chunk"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.capturer(userID).AddTranscript(req.Chunk); err != nil {
		writeError(w, apperror.ValidationFailed("chunk", err.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStop serves POST /api/voice/stop. An empty session answers 204;
// otherwise the accumulated transcript runs through the search pipeline.
func (h *VoiceHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	result, err := h.capturer(userID).Stop(r.Context())
	if err != nil {
		// Pipeline failures carry their own taxonomy; a stop outside a
		// listening session is a state conflict.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			writeError(w, err)
		} else {
			writeError(w, apperror.Conflict("voice session", userID))
		}
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCancel serves POST /api/voice/cancel
func (h *VoiceHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	h.capturer(userID).Cancel()
	w.WriteHeader(http.StatusNoContent)
}
