package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipe-hub/api/internal/domain"
)

// AdminServiceDeps groups constructor parameters for the admin service.
type AdminServiceDeps struct {
	App   AppService
	Clock func() time.Time
	// NewID mints identifiers for recipes and ads; defaults to ULIDs,
	// which embed the creation timestamp.
	NewID func(t time.Time) string
}

type adminService struct {
	app   AppService
	clock func() time.Time
	newID func(t time.Time) string
}

var _ AdminService = (*adminService)(nil)

// NewAdminService constructs the editing surface on top of the app service.
func NewAdminService(deps AdminServiceDeps) (AdminService, error) {
	if deps.App == nil {
		return nil, errors.New("admin service: app service is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func(t time.Time) string {
			return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
		}
	}
	return &adminService{
		app:   deps.App,
		clock: func() time.Time { return clock().UTC() },
		newID: newID,
	}, nil
}

// current returns a deep copy of the loaded model for draft construction.
func (s *adminService) current() (domain.AppData, error) {
	snap := s.app.Snapshot()
	if snap.Data == nil {
		return domain.AppData{}, ErrNotLoaded
	}
	return snap.Data.Clone(), nil
}

func (s *adminService) UpdateSettings(ctx context.Context, settings domain.Settings) (SaveResult, error) {
	data, err := s.current()
	if err != nil {
		return SaveResult{}, err
	}

	settings.GistID = strings.TrimSpace(settings.GistID)
	settings.GithubToken = strings.TrimSpace(settings.GithubToken)

	// Only the settings sub-object changes; the rest of the aggregate is
	// carried over untouched.
	data.Settings = settings
	return s.app.Save(ctx, data)
}

func (s *adminService) ReplaceAds(ctx context.Context, ads []domain.Ad) (SaveResult, error) {
	data, err := s.current()
	if err != nil {
		return SaveResult{}, err
	}

	next := make([]domain.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad.ID == "" {
			ad.ID = s.newID(s.clock())
		}
		next = append(next, ad)
	}

	data.Ads = next
	return s.app.Save(ctx, data)
}

func (s *adminService) NewAd() domain.Ad {
	return domain.Ad{ID: s.newID(s.clock())}
}

func (s *adminService) UpsertRecipe(ctx context.Context, recipe domain.Recipe) (domain.Recipe, SaveResult, error) {
	data, err := s.current()
	if err != nil {
		return domain.Recipe{}, SaveResult{}, err
	}

	recipe.Name = strings.TrimSpace(recipe.Name)
	recipe.Category = strings.TrimSpace(recipe.Category)
	recipe.ImageURL = strings.TrimSpace(recipe.ImageURL)
	recipe.Ingredients = trimList(recipe.Ingredients)
	recipe.Instructions = trimList(recipe.Instructions)

	if recipe.Name == "" {
		return domain.Recipe{}, SaveResult{}, fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if recipe.Category == "" {
		return domain.Recipe{}, SaveResult{}, fmt.Errorf("%w: category is required", ErrInvalidRecipe)
	}
	if len(recipe.Ingredients) == 0 {
		return domain.Recipe{}, SaveResult{}, fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRecipe)
	}
	if len(recipe.Instructions) == 0 {
		return domain.Recipe{}, SaveResult{}, fmt.Errorf("%w: at least one instruction is required", ErrInvalidRecipe)
	}

	if recipe.ID != "" {
		// Existing recipe: replace in place, preserving id and position.
		replaced := false
		for i, existing := range data.Recipes {
			if existing.ID == recipe.ID {
				if recipe.CreatedAt == "" {
					recipe.CreatedAt = existing.CreatedAt
				}
				data.Recipes[i] = recipe
				replaced = true
				break
			}
		}
		if !replaced {
			return domain.Recipe{}, SaveResult{}, ErrRecipeNotFound
		}
	} else {
		now := s.clock()
		recipe.ID = s.newID(now)
		recipe.CreatedAt = now.Format(time.RFC3339)
		data.Recipes = append([]domain.Recipe{recipe}, data.Recipes...)
	}

	result, err := s.app.Save(ctx, data)
	if err != nil {
		return recipe, result, err
	}
	return recipe, result, nil
}

func (s *adminService) DeleteRecipe(ctx context.Context, recipeID string) (SaveResult, error) {
	data, err := s.current()
	if err != nil {
		return SaveResult{}, err
	}

	next := make([]domain.Recipe, 0, len(data.Recipes))
	found := false
	for _, r := range data.Recipes {
		if r.ID == recipeID {
			found = true
			continue
		}
		next = append(next, r)
	}
	if !found {
		return SaveResult{}, ErrRecipeNotFound
	}

	data.Recipes = next
	return s.app.Save(ctx, data)
}

func (s *adminService) Export(ctx context.Context) ([]byte, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

func (s *adminService) Import(ctx context.Context, raw []byte) (SaveResult, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}
	for _, field := range []string{"settings", "recipes", "ads"} {
		value, ok := probe[field]
		if !ok || string(value) == "null" {
			return SaveResult{}, fmt.Errorf("%w: missing %s", ErrInvalidImportFormat, field)
		}
	}

	var data domain.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}
	if data.Recipes == nil {
		data.Recipes = []domain.Recipe{}
	}
	if data.Ads == nil {
		data.Ads = []domain.Ad{}
	}

	return s.app.Save(ctx, data)
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
