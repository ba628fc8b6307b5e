package services

import "errors"

var (
	// ErrNotLoaded signals that an operation needs a loaded model and none
	// is present (initial load failed or has not finished).
	ErrNotLoaded = errors.New("application data is not loaded")

	// ErrInvalidCredentials is the recoverable login failure: the submitted
	// username/password pair did not match the loaded admin credentials.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrMissingSyncCredentials signals a save on a configured installation
	// whose document id or access credential has been lost: the edit was
	// adopted locally but nothing was transmitted remotely.
	ErrMissingSyncCredentials = errors.New("cannot sync: gist id or github token is missing from settings")

	// ErrInvalidImportFormat rejects an import payload that is not valid
	// JSON or lacks one of the settings/recipes/ads top-level fields. The
	// current model is left unchanged.
	ErrInvalidImportFormat = errors.New("import data is missing required fields")

	// ErrRecipeNotFound reports a delete or lookup against an id that no
	// longer resolves.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrInvalidRecipe rejects a recipe draft that fails the editing
	// surface invariants.
	ErrInvalidRecipe = errors.New("invalid recipe")
)
