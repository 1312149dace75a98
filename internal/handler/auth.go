package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/service"
)

// AuthHandler owns the Google login flow and the session endpoints.
type AuthHandler struct {
	google       *auth.GoogleProvider
	tokens       *auth.TokenService
	users        *service.UserService
	dashboardURL string
	logger       *slog.Logger
}

func NewAuthHandler(google *auth.GoogleProvider, tokens *auth.TokenService, users *service.UserService, dashboardURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google:       google,
		tokens:       tokens,
		users:        users,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// HandleGoogleLogin serves GET /auth/google/login. A random state value
// goes into a short-lived cookie and must come back on the callback.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback serves GET /auth/google/callback?code=&state=.
// It checks the CSRF state, exchanges the code for a Google profile,
// upserts the user by email, drops a session cookie and redirects to the
// dashboard with the user profile attached as a query parameter.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single-use: clear it now.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.dashboardURL+"?auth=denied", http.StatusSeeOther)
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: exchange failed", "error", err)
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	user, err := h.users.UpsertFromGoogle(r.Context(), gUser.Email, gUser.Name, gUser.Picture)
	if err != nil {
		h.logger.Error("auth callback: upsert failed", "error", err)
		writeError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("auth callback: token generation failed", "error", err)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// The dashboard reads the user blob from the query string on arrival.
	blob, err := json.Marshal(user)
	if err != nil {
		http.Redirect(w, r, h.dashboardURL, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.dashboardURL+"?user="+url.QueryEscape(string(blob)), http.StatusSeeOther)
}

// HandleLogout serves POST /auth/logout. Sessions are stateless JWTs, so
// logout just deletes the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe serves GET /api/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe serves PUT /api/me.
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var update model.User
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
