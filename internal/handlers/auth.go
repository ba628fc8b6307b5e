package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recipe-hub/api/internal/platform/httpx"
	"github.com/recipe-hub/api/internal/services"
	"github.com/recipe-hub/api/internal/session"
)

// AuthHandlers implements the login and logout endpoints. Authentication is a
// plain credential comparison against the loaded settings; success only flips
// the session login flag.
type AuthHandlers struct {
	app      services.AppService
	sessions session.Store
}

// NewAuthHandlers constructs the auth handlers.
func NewAuthHandlers(app services.AppService, sessions session.Store) *AuthHandlers {
	return &AuthHandlers{app: app, sessions: sessions}
}

// Routes registers the /auth endpoints.
func (h *AuthHandlers) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	if err := h.app.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", err.Error(), http.StatusUnauthorized))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("login_failed", err.Error(), http.StatusInternalServerError))
		return
	}

	sess := h.sessions.Get(r)
	sess.LoggedIn = true
	h.sessions.Save(w, sess)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"loggedIn": true})
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(r)
	sess.LoggedIn = false
	h.sessions.Save(w, sess)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
}
