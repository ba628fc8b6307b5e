package domain

// PlaceholderGistID is the compiled-in default document identifier. A site
// whose gist id is empty or equal to this value has no remote sync target and
// runs in demo/setup mode.
const PlaceholderGistID = "YOUR_GIST_ID_HERE"

// DefaultAppData returns the compiled-in dataset used when no remote document
// is configured. The admin credentials here are the documented first-run
// defaults and are expected to be replaced through the settings form.
func DefaultAppData() AppData {
	return AppData{
		Settings: Settings{
			SiteName:        "Recipe Hub",
			SiteDescription: "A small recipe collection, published straight from a GitHub Gist.",
			SiteLogo:        "",
			YoutubeChannel:  "https://www.youtube.com/",
			GistID:          PlaceholderGistID,
			GithubToken:     "",
			AdminUser:       "admin",
			AdminPass:       "password",
		},
		Recipes: []Recipe{
			{
				ID:       "default-shakshuka",
				Name:     "Shakshuka",
				Category: "Breakfast",
				ImageURL: "https://images.unsplash.com/photo-1590412200988-a436970781fa",
				Ingredients: []string{
					"4 eggs",
					"400g canned tomatoes",
					"1 onion, diced",
					"1 red pepper, diced",
					"2 cloves garlic",
					"1 tsp cumin, 1 tsp paprika",
				},
				Instructions: []string{
					"Soften the onion and pepper in olive oil.",
					"Add garlic and spices, then the tomatoes, and simmer 10 minutes.",
					"Make wells in the sauce and crack in the eggs.",
					"Cover and cook until the whites are set.",
				},
				CreatedAt: "2024-01-02T09:00:00Z",
			},
			{
				ID:       "default-lentil-soup",
				Name:     "Red Lentil Soup",
				Category: "Soups",
				ImageURL: "https://images.unsplash.com/photo-1547592166-23ac45744acd",
				Ingredients: []string{
					"250g red lentils",
					"1 carrot, chopped",
					"1 onion, chopped",
					"1.2l vegetable stock",
					"1 tsp cumin",
				},
				Instructions: []string{
					"Sweat the onion and carrot until soft.",
					"Add lentils, cumin and stock.",
					"Simmer 20 minutes, then blend until smooth.",
				},
				CreatedAt: "2024-01-01T12:00:00Z",
			},
		},
		Ads: []Ad{
			{
				ID:   "default-ad",
				Text: "Subscribe to our channel for weekly video recipes",
				Link: "https://www.youtube.com/",
			},
		},
	}
}
