package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Settings holds the site-wide configuration stored inside the document.
// Exactly one settings object exists per document.
type Settings struct {
	SiteName        string `json:"siteName"`
	SiteDescription string `json:"siteDescription"`
	SiteLogo        string `json:"siteLogo"`
	YoutubeChannel  string `json:"youtubeChannel"`
	GistID          string `json:"gistId"`
	GithubToken     string `json:"githubToken"`
	AdminUser       string `json:"adminUser"`
	AdminPass       string `json:"adminPass"`
}

// Recipe is a single published recipe. Ingredients and instructions are
// ordered and each keeps at least one entry once accepted by the admin surface.
type Recipe struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	ImageURL     string   `json:"imageUrl"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	CreatedAt    string   `json:"createdAt"`
}

// CreatedTime parses the recipe creation timestamp. A zero time is returned
// when the stored value is not valid RFC3339.
func (r Recipe) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ad is a promotional banner entry.
type Ad struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Link string `json:"link"`
}

// AppData is the aggregate root and the unit of persistence: every remote
// write transmits the entire aggregate, never a partial patch.
type AppData struct {
	Settings Settings `json:"settings"`
	Recipes  []Recipe `json:"recipes"`
	Ads      []Ad     `json:"ads"`
}

// Validate checks the aggregate invariants a loaded document must satisfy.
func (d AppData) Validate() error {
	if strings.TrimSpace(d.Settings.SiteName) == "" {
		return fmt.Errorf("app data: settings.siteName is empty")
	}
	if d.Recipes == nil {
		return fmt.Errorf("app data: recipes collection is missing")
	}
	if d.Ads == nil {
		return fmt.Errorf("app data: ads collection is missing")
	}
	return nil
}

// Clone produces a deep copy so callers can build a replacement aggregate
// without mutating the live model.
func (d AppData) Clone() AppData {
	out := AppData{
		Settings: d.Settings,
		Recipes:  make([]Recipe, len(d.Recipes)),
		Ads:      make([]Ad, len(d.Ads)),
	}
	for i, r := range d.Recipes {
		r.Ingredients = append([]string(nil), r.Ingredients...)
		r.Instructions = append([]string(nil), r.Instructions...)
		out.Recipes[i] = r
	}
	copy(out.Ads, d.Ads)
	return out
}

// RecipeByID returns the recipe with the given id, if present.
func (d AppData) RecipeByID(id string) (Recipe, bool) {
	for _, r := range d.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// SortedRecipes returns the recipes ordered by creation timestamp descending.
// The sort is stable so equal timestamps keep their stored order.
func (d AppData) SortedRecipes() []Recipe {
	out := make([]Recipe, len(d.Recipes))
	copy(out, d.Recipes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedTime().After(out[j].CreatedTime())
	})
	return out
}
