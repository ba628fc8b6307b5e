package services

import (
	"context"

	"github.com/recipe-hub/api/internal/domain"
)

// LoadState tracks the application model lifecycle. Loaded is re-enterable:
// every reload runs the sequence again from Loading.
type LoadState string

const (
	LoadStateLoading LoadState = "loading"
	LoadStateLoaded  LoadState = "loaded"
	LoadStateError   LoadState = "error"
)

// Snapshot is a point-in-time view of the application model.
type Snapshot struct {
	State LoadState
	// Data is nil until a load succeeds and after a failed load; there is
	// no stale-data fallback.
	Data *domain.AppData
	// DemoMode reports that no remote document is configured and the model
	// holds the compiled-in dataset.
	DemoMode bool
	// Message carries the user-facing load failure when State is error.
	Message string
	// ActiveGistID is the document id the model was loaded from.
	ActiveGistID string
}

// SaveResult describes what happened to an accepted edit.
type SaveResult struct {
	// Synced means the full document was written to the remote store.
	Synced bool
	// LocalOnly means the model was adopted without a remote write.
	LocalOnly bool
	// Reloaded means the save changed the active document id and the load
	// sequence was re-run against the new id.
	Reloaded bool
}

// AppService owns the single application model: load sequencing, the save
// decision, and the login check against the loaded credentials.
type AppService interface {
	// Load runs the load sequence against the given document id. An empty
	// or placeholder id enters demo mode without touching the remote store.
	Load(ctx context.Context, documentID string) Snapshot

	// Reload re-runs the load sequence against the active document id.
	Reload(ctx context.Context) Snapshot

	// Snapshot returns the current model state.
	Snapshot() Snapshot

	// Save applies the persist decision to a replacement aggregate: remote
	// write when the document id and credential allow it, local adoption
	// otherwise. Remote failures leave the model untouched.
	Save(ctx context.Context, newData domain.AppData) (SaveResult, error)

	// Authenticate compares the submitted credentials against the loaded
	// model's admin credentials with exact string equality.
	Authenticate(username, password string) error
}

// AdminService exposes the editing surface. Every accepted edit produces a
// replacement aggregate routed through AppService.Save.
type AdminService interface {
	UpdateSettings(ctx context.Context, settings domain.Settings) (SaveResult, error)
	ReplaceAds(ctx context.Context, ads []domain.Ad) (SaveResult, error)
	NewAd() domain.Ad
	UpsertRecipe(ctx context.Context, recipe domain.Recipe) (domain.Recipe, SaveResult, error)
	DeleteRecipe(ctx context.Context, recipeID string) (SaveResult, error)
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, raw []byte) (SaveResult, error)
}
