package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
	"github.com/colaunch/colaunch-server/internal/search"
	"github.com/colaunch/colaunch-server/internal/service"
	"github.com/colaunch/colaunch-server/internal/voice"
)

// IdeaHandler serves /api/ideas: CRUD, voting, media, vector and voice
// search, and embedding maintenance.
type IdeaHandler struct {
	ideas     *service.IdeaService
	vectorize *service.VectorizeService
	pipeline  *voice.Pipeline
	logger    *slog.Logger
}

func NewIdeaHandler(ideas *service.IdeaService, vectorize *service.VectorizeService, pipeline *voice.Pipeline, logger *slog.Logger) *IdeaHandler {
	return &IdeaHandler{ideas: ideas, vectorize: vectorize, pipeline: pipeline, logger: logger}
}

// HandleList serves GET /api/ideas?limit=&offset=&q=&location=&industry=.
// The q/location/industry parameters are the manual search-bar filters,
// applied after the upvote-ordered fetch.
func (h *IdeaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	ideas, err := h.ideas.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	criteria := search.Criteria{
		Query:      q.Get("q"),
		Location:   q.Get("location"),
		Industries: q["industry"],
	}
	writeJSON(w, http.StatusOK, search.Filter(ideas, criteria))
}

// HandleGet serves GET /api/ideas/{id}
func (h *IdeaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	idea, err := h.ideas.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// HandleListMine serves GET /api/ideas/mine
func (h *IdeaHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	ideas, err := h.ideas.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	search.SortByUpvotes(ideas)
	writeJSON(w, http.StatusOK, ideas)
}

// HandleCreate serves POST /api/ideas
func (h *IdeaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var idea model.Idea
	if err := decodeJSON(r, &idea); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.ideas.Create(r.Context(), userID, &idea)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate serves PUT /api/ideas/{id}
func (h *IdeaHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var idea model.Idea
	if err := decodeJSON(r, &idea); err != nil {
		writeError(w, err)
		return
	}
	idea.ID = chi.URLParam(r, "id")

	updated, err := h.ideas.Update(r.Context(), userID, &idea)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete serves DELETE /api/ideas/{id}
func (h *IdeaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.ideas.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVote serves POST /api/ideas/{id}/upvote and .../downvote. The
// response carries the authoritative counters after the atomic increment.
func (h *IdeaHandler) HandleVote(kind repository.VoteKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idea, err := h.ideas.Vote(r.Context(), chi.URLParam(r, "id"), kind)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, idea)
	}
}

// HandleAttachMedia serves POST /api/ideas/{id}/media
func (h *IdeaHandler) HandleAttachMedia(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		URLs []string `json:"urls"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	idea, err := h.ideas.AttachMedia(r.Context(), userID, chi.URLParam(r, "id"), req.URLs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// HandleReindexOne serves POST /api/ideas/{id}/reindex
func (h *IdeaHandler) HandleReindexOne(w http.ResponseWriter, r *http.Request) {
	idea, err := h.ideas.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vectorize.ReindexOne(r.Context(), idea); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReindexAll serves POST /api/ideas/reindex?force=true
func (h *IdeaHandler) HandleReindexAll(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	report, err := h.vectorize.ReindexAll(r.Context(), force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleVectorSearch serves POST /api/ideas/search/vector with body
// {"query": "..."}: the query is embedded as-is and matched against the
// index.
func (h *IdeaHandler) HandleVectorSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, apperror.ValidationFailed("query", "search query is required"))
		return
	}

	result, err := h.pipeline.SearchValue(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleVoiceSearch serves POST /api/ideas/search/voice. The body is
// either JSON {"transcript": "..."} or a multipart form with an audio
// file, which is transcribed first.
func (h *IdeaHandler) HandleVoiceSearch(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("audio")
		if err != nil {
			writeError(w, apperror.ValidationFailed("audio", "audio file is required"))
			return
		}
		defer file.Close()

		result, err := h.pipeline.SearchAudio(r.Context(), header.Filename, file)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, apperror.ValidationFailed("transcript", "transcript is required"))
		return
	}

	result, err := h.pipeline.SearchTranscript(r.Context(), req.Transcript)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
