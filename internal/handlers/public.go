package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/recipe-hub/api/internal/domain"
	"github.com/recipe-hub/api/internal/platform/httpx"
	"github.com/recipe-hub/api/internal/services"
	"github.com/recipe-hub/api/internal/session"
)

// PublicHandlers serves the reader-facing site: the home view, recipe
// details gated behind the subscription acknowledgement, and the plain-text
// recipe download.
type PublicHandlers struct {
	app      services.AppService
	sessions session.Store
}

// NewPublicHandlers constructs the public handlers.
func NewPublicHandlers(app services.AppService, sessions session.Store) *PublicHandlers {
	return &PublicHandlers{app: app, sessions: sessions}
}

// Routes registers the /public endpoints.
func (h *PublicHandlers) Routes(r chi.Router) {
	r.Get("/home", h.home)
	r.Get("/recipes/{recipeID}", h.recipeDetail)
	r.Get("/recipes/{recipeID}/download", h.recipeDownload)
	r.Post("/subscribe", h.subscribe)
}

type sitePayload struct {
	SiteName        string `json:"siteName"`
	SiteDescription string `json:"siteDescription"`
	SiteLogo        string `json:"siteLogo"`
	YoutubeChannel  string `json:"youtubeChannel"`
}

type recipeSummaryPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `json:"createdAt"`
}

type homeResponse struct {
	Site     sitePayload            `json:"site"`
	Recipes  []recipeSummaryPayload `json:"recipes"`
	Ads      []domain.Ad            `json:"ads"`
	DemoMode bool                   `json:"demoMode"`
}

func (h *PublicHandlers) home(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadedSnapshot(w, r)
	if !ok {
		return
	}

	// Keep the remembered document id in step with the loaded document.
	if !snap.DemoMode {
		if sess := h.sessions.Get(r); sess.GistID != snap.Data.Settings.GistID {
			sess.GistID = snap.Data.Settings.GistID
			h.sessions.Save(w, sess)
		}
	}

	sorted := snap.Data.SortedRecipes()
	recipes := make([]recipeSummaryPayload, 0, len(sorted))
	for _, recipe := range sorted {
		recipes = append(recipes, recipeSummaryPayload{
			ID:        recipe.ID,
			Name:      recipe.Name,
			Category:  recipe.Category,
			ImageURL:  recipe.ImageURL,
			CreatedAt: recipe.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, homeResponse{
		Site:     sitePayloadFrom(snap.Data.Settings),
		Recipes:  recipes,
		Ads:      snap.Data.Ads,
		DemoMode: snap.DemoMode,
	})
}

type recipeDetailResponse struct {
	recipeSummaryPayload
	// Locked hides the recipe body until the session has acknowledged the
	// subscription prompt.
	Locked         bool     `json:"locked"`
	YoutubeChannel string   `json:"youtubeChannel,omitempty"`
	Ingredients    []string `json:"ingredients,omitempty"`
	Instructions   []string `json:"instructions,omitempty"`
}

func (h *PublicHandlers) recipeDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, ok := h.loadedSnapshot(w, r)
	if !ok {
		return
	}

	recipeID := chi.URLParam(r, "recipeID")
	recipe, found := snap.Data.RecipeByID(recipeID)
	if !found {
		// An unresolvable id renders as an inline missing placeholder,
		// not an application-level failure.
		httpx.WriteError(ctx, w, httpx.NewError("recipe_not_found", "recipe not found", http.StatusNotFound))
		return
	}

	payload := recipeDetailResponse{
		recipeSummaryPayload: recipeSummaryPayload{
			ID:        recipe.ID,
			Name:      recipe.Name,
			Category:  recipe.Category,
			ImageURL:  recipe.ImageURL,
			CreatedAt: recipe.CreatedAt,
		},
	}

	if !h.sessions.Get(r).Subscribed {
		payload.Locked = true
		payload.YoutubeChannel = snap.Data.Settings.YoutubeChannel
	} else {
		payload.Ingredients = recipe.Ingredients
		payload.Instructions = recipe.Instructions
	}

	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *PublicHandlers) recipeDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, ok := h.loadedSnapshot(w, r)
	if !ok {
		return
	}

	if !h.sessions.Get(r).Subscribed {
		httpx.WriteError(ctx, w, httpx.NewError("subscription_required", "acknowledge the subscription prompt to access the full recipe", http.StatusForbidden))
		return
	}

	recipeID := chi.URLParam(r, "recipeID")
	recipe, found := snap.Data.RecipeByID(recipeID)
	if !found {
		httpx.WriteError(ctx, w, httpx.NewError("recipe_not_found", "recipe not found", http.StatusNotFound))
		return
	}

	filename := strings.ReplaceAll(strings.TrimSpace(recipe.Name), " ", "_") + ".txt"
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(renderRecipeText(recipe)))
}

func (h *PublicHandlers) subscribe(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(r)
	sess.Subscribed = true
	h.sessions.Save(w, sess)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"subscribed": true})
}

// loadedSnapshot resolves the current model or writes the load-state error.
func (h *PublicHandlers) loadedSnapshot(w http.ResponseWriter, r *http.Request) (services.Snapshot, bool) {
	ctx := r.Context()
	snap := h.app.Snapshot()
	switch snap.State {
	case services.LoadStateLoading:
		httpx.WriteError(ctx, w, httpx.NewError("loading", "application data is still loading", http.StatusServiceUnavailable))
		return snap, false
	case services.LoadStateError:
		httpx.WriteError(ctx, w, httpx.NewError("load_failed", snap.Message, http.StatusServiceUnavailable))
		return snap, false
	}
	if snap.Data == nil {
		httpx.WriteError(ctx, w, httpx.NewError("no_data", "no application data available", http.StatusServiceUnavailable))
		return snap, false
	}
	return snap, true
}

func sitePayloadFrom(settings domain.Settings) sitePayload {
	return sitePayload{
		SiteName:        settings.SiteName,
		SiteDescription: settings.SiteDescription,
		SiteLogo:        settings.SiteLogo,
		YoutubeChannel:  settings.YoutubeChannel,
	}
}

func renderRecipeText(recipe domain.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recipe: %s\n", recipe.Name)
	fmt.Fprintf(&b, "Category: %s\n\n", recipe.Category)

	b.WriteString("Ingredients:\n")
	for _, ing := range recipe.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}

	b.WriteString("\nInstructions:\n")
	for i, inst := range recipe.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, inst)
	}
	return b.String()
}
