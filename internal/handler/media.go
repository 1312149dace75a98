package handler

import (
	"log/slog"
	"net/http"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/storage"
)

// MediaHandler serves media uploads. Stored files are served by the
// router's /media file server.
type MediaHandler struct {
	store  *storage.MediaStore
	logger *slog.Logger
}

func NewMediaHandler(store *storage.MediaStore, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{store: store, logger: logger}
}

// HandleUpload serves POST /api/media as multipart form data with a
// "file" field. Responds with the public URL.
func (h *MediaHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+4096)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "multipart file field is required"))
		return
	}
	defer file.Close()

	url, err := h.store.Save(header.Filename, file)
	if err != nil {
		h.logger.Warn("media upload rejected", "filename", header.Filename, "error", err)
		writeError(w, apperror.ValidationFailed("file", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
