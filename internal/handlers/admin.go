package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/recipe-hub/api/internal/domain"
	"github.com/recipe-hub/api/internal/platform/httpx"
	"github.com/recipe-hub/api/internal/repositories"
	"github.com/recipe-hub/api/internal/services"
	"github.com/recipe-hub/api/internal/session"
)

// AdminHandlers exposes the gated editing surface: settings, ads and recipe
// sub-saves, bulk import/export, and a manual reload of the load sequence.
type AdminHandlers struct {
	app      services.AppService
	admin    services.AdminService
	sessions session.Store
}

// NewAdminHandlers constructs the admin handlers.
func NewAdminHandlers(app services.AppService, admin services.AdminService, sessions session.Store) *AdminHandlers {
	return &AdminHandlers{app: app, admin: admin, sessions: sessions}
}

// Routes registers the /admin endpoints behind the login gate.
func (h *AdminHandlers) Routes(r chi.Router) {
	r.Use(h.requireLogin)

	r.Get("/data", h.data)
	r.Put("/settings", h.updateSettings)
	r.Put("/ads", h.replaceAds)
	r.Post("/ads/new", h.newAd)
	r.Post("/recipes", h.upsertRecipe)
	r.Delete("/recipes/{recipeID}", h.deleteRecipe)
	r.Get("/export", h.export)
	r.Post("/import", h.importData)
	r.Post("/reload", h.reload)
}

// requireLogin redirects unauthenticated access to the login flow, even when
// an admin route is hit directly.
func (h *AdminHandlers) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.Get(r).LoggedIn {
			httpx.WriteError(r.Context(), w, httpx.NewError("login_required", "please log in to access the admin panel", http.StatusUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandlers) data(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Snapshot()
	if snap.Data == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_loaded", services.ErrNotLoaded.Error(), http.StatusConflict))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"data":           snap.Data,
		"demoMode":       snap.DemoMode,
		"settingsFields": domain.SettingsFields(),
	})
}

func (h *AdminHandlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var settings domain.Settings
	if !decodeBody(w, r, &settings) {
		return
	}

	result, err := h.admin.UpdateSettings(ctx, settings)
	h.writeSaveOutcome(w, r, result, err)
}

func (h *AdminHandlers) replaceAds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var ads []domain.Ad
	if !decodeBody(w, r, &ads) {
		return
	}

	result, err := h.admin.ReplaceAds(ctx, ads)
	h.writeSaveOutcome(w, r, result, err)
}

func (h *AdminHandlers) newAd(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.admin.NewAd())
}

func (h *AdminHandlers) upsertRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var recipe domain.Recipe
	if !decodeBody(w, r, &recipe) {
		return
	}

	saved, result, err := h.admin.UpsertRecipe(ctx, recipe)
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"recipe":    saved,
		"synced":    result.Synced,
		"localOnly": result.LocalOnly,
		"reloaded":  result.Reloaded,
	})
}

func (h *AdminHandlers) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !confirmed(r) {
		httpx.WriteError(ctx, w, httpx.NewError("confirmation_required", "recipe deletion requires confirm=true", http.StatusBadRequest))
		return
	}

	result, err := h.admin.DeleteRecipe(ctx, chi.URLParam(r, "recipeID"))
	h.writeSaveOutcome(w, r, result, err)
}

func (h *AdminHandlers) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.admin.Export(r.Context())
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="recipe-hub-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AdminHandlers) importData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !confirmed(r) {
		httpx.WriteError(ctx, w, httpx.NewError("confirmation_required", "import overwrites the current data and requires confirm=true", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		return
	}

	result, err := h.admin.Import(ctx, body)
	h.writeSaveOutcome(w, r, result, err)
}

func (h *AdminHandlers) reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Prefer the remembered document id over whatever is currently active.
	documentID := h.sessions.Get(r).GistID
	if documentID == "" {
		documentID = h.app.Snapshot().ActiveGistID
	}

	snap := h.app.Load(ctx, documentID)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"state":    snap.State,
		"demoMode": snap.DemoMode,
		"message":  snap.Message,
	})
}

func (h *AdminHandlers) writeSaveOutcome(w http.ResponseWriter, r *http.Request, result services.SaveResult, err error) {
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	message := "Data saved to the GitHub gist."
	if result.LocalOnly {
		message = "Data updated locally. Provide a valid gist id and access token in settings to sync your changes."
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"synced":    result.Synced,
		"localOnly": result.LocalOnly,
		"reloaded":  result.Reloaded,
		"message":   message,
	})
}

// writeSaveError maps service and store failures onto the error envelope.
// Store failures are never swallowed: the edit was not confirmed persisted and
// the caller has to know.
func (h *AdminHandlers) writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrNotLoaded):
		httpx.WriteError(ctx, w, httpx.NewError("not_loaded", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrMissingSyncCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("missing_sync_credentials", err.Error(), http.StatusConflict).
			WithDetails(map[string]any{"localOnly": true}))
	case errors.Is(err, services.ErrInvalidImportFormat):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_import_format", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrInvalidRecipe):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_recipe", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrRecipeNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("recipe_not_found", err.Error(), http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, syncFailureError(err))
	}
}

func syncFailureError(err error) httpx.Error {
	var storeErr repositories.StoreError
	if errors.As(err, &storeErr) {
		switch {
		case storeErr.IsUnauthorized():
			return httpx.NewError("sync_unauthorized", "the document store rejected the access token; the edit was not persisted", http.StatusBadGateway)
		case storeErr.IsNotFound():
			return httpx.NewError("sync_not_found", "the gist id does not resolve; the edit was not persisted", http.StatusBadGateway)
		case storeErr.IsRateLimited():
			return httpx.NewError("sync_rate_limited", "the document store is rate limiting requests; the edit was not persisted", http.StatusBadGateway)
		}
	}
	return httpx.NewError("sync_failed", "saving to the document store failed: "+err.Error(), http.StatusBadGateway)
}

func confirmed(r *http.Request) bool {
	ok, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return err == nil && ok
}

// decodeBody reads and unmarshals a JSON request body, writing the error
// envelope on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	body, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errEmptyBody):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return false
	}
	return true
}
