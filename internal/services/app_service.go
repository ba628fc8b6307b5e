package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/recipe-hub/api/internal/domain"
	"github.com/recipe-hub/api/internal/platform/observability"
	"github.com/recipe-hub/api/internal/repositories"
)

// AppServiceDeps groups constructor parameters for the app service.
type AppServiceDeps struct {
	Store repositories.DocumentRepository
	// Defaults supplies the compiled-in dataset used in demo mode.
	Defaults func() domain.AppData
	// Placeholder is the compiled-in default document id; a matching or
	// empty id means no remote sync target is configured.
	Placeholder string
}

type appService struct {
	store       repositories.DocumentRepository
	defaults    func() domain.AppData
	placeholder string

	mu       sync.Mutex
	state    LoadState
	data     *domain.AppData
	demoMode bool
	message  string
	activeID string
}

var _ AppService = (*appService)(nil)

// NewAppService constructs the service owning the application model.
func NewAppService(deps AppServiceDeps) (AppService, error) {
	if deps.Store == nil {
		return nil, errors.New("app service: document repository is required")
	}
	defaults := deps.Defaults
	if defaults == nil {
		defaults = domain.DefaultAppData
	}
	placeholder := strings.TrimSpace(deps.Placeholder)
	if placeholder == "" {
		placeholder = domain.PlaceholderGistID
	}
	return &appService{
		store:       deps.Store,
		defaults:    defaults,
		placeholder: placeholder,
		state:       LoadStateLoading,
	}, nil
}

// CanSync reports whether a document with the given id and credential can be
// written to the remote store: the id must be non-empty and differ from the
// placeholder, and the credential must be non-empty.
func CanSync(documentID, credential, placeholder string) bool {
	documentID = strings.TrimSpace(documentID)
	credential = strings.TrimSpace(credential)
	return documentID != "" && documentID != placeholder && credential != ""
}

func (s *appService) Load(ctx context.Context, documentID string) Snapshot {
	documentID = strings.TrimSpace(documentID)
	logger := observability.FromContext(ctx)

	s.mu.Lock()
	s.state = LoadStateLoading
	s.message = ""
	s.mu.Unlock()

	if documentID == "" || documentID == s.placeholder {
		data := s.defaults()
		logger.Info("no gist id configured, entering demo mode")

		s.mu.Lock()
		s.state = LoadStateLoaded
		s.data = &data
		s.demoMode = true
		s.activeID = documentID
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	// Single fetch attempt per load cycle; retries are always user-driven.
	data, err := s.store.Fetch(ctx, documentID)
	if err != nil {
		logger.Warn("load failed", zap.String("gist_id", documentID), zap.Error(err))

		s.mu.Lock()
		s.state = LoadStateError
		s.data = nil
		s.demoMode = false
		s.activeID = documentID
		s.message = loadFailureMessage(documentID, err)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	logger.Info("application data loaded", zap.String("gist_id", documentID))

	s.mu.Lock()
	s.state = LoadStateLoaded
	s.data = &data
	s.demoMode = false
	s.activeID = documentID
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return snap
}

func (s *appService) Reload(ctx context.Context) Snapshot {
	s.mu.Lock()
	id := s.activeID
	s.mu.Unlock()
	return s.Load(ctx, id)
}

func (s *appService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *appService) Save(ctx context.Context, newData domain.AppData) (SaveResult, error) {
	documentID := strings.TrimSpace(newData.Settings.GistID)
	credential := strings.TrimSpace(newData.Settings.GithubToken)
	logger := observability.FromContext(ctx)

	if CanSync(documentID, credential, s.placeholder) {
		// The remote write happens outside the model lock; racing saves
		// hit the store independently and the last writer wins.
		if err := s.store.Replace(ctx, documentID, credential, newData); err != nil {
			// The model is deliberately left untouched so the local
			// state never claims more than what is persisted.
			return SaveResult{}, err
		}

		s.mu.Lock()
		idChanged := documentID != s.activeID
		s.data = &newData
		s.state = LoadStateLoaded
		s.demoMode = false
		s.message = ""
		s.mu.Unlock()

		result := SaveResult{Synced: true}
		if idChanged {
			// The active document moved: re-run the load sequence so
			// subsequent reads and writes target the new id.
			logger.Info("active gist id changed, reloading", zap.String("gist_id", documentID))
			s.Load(ctx, documentID)
			result.Reloaded = true
		}
		return result, nil
	}

	s.mu.Lock()
	s.data = &newData
	s.state = LoadStateLoaded
	demo := s.demoMode
	s.mu.Unlock()

	if demo {
		// Expected in demo/setup mode: a local-only draft, acknowledged
		// but never transmitted.
		logger.Info("saved locally, no sync target configured")
		return SaveResult{LocalOnly: true}, nil
	}

	// A configured installation lost its id or credential; the edit is kept
	// locally but the caller intended to sync, so this surfaces as an error.
	logger.Warn("save could not sync, sync credentials missing from settings")
	return SaveResult{LocalOnly: true}, ErrMissingSyncCredentials
}

func (s *appService) Authenticate(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ErrInvalidCredentials
	}
	if username != s.data.Settings.AdminUser || password != s.data.Settings.AdminPass {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *appService) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        s.state,
		DemoMode:     s.demoMode,
		Message:      s.message,
		ActiveGistID: s.activeID,
	}
	if s.data != nil {
		data := s.data.Clone()
		snap.Data = &data
	}
	return snap
}

func loadFailureMessage(documentID string, err error) string {
	var storeErr repositories.StoreError
	if errors.As(err, &storeErr) {
		switch {
		case storeErr.IsNotFound():
			return fmt.Sprintf("Could not load data: gist %q or its data file was not found. Check the gist id and that the gist contains the data file.", documentID)
		case storeErr.IsMalformed():
			return "Could not load data: the gist data file is not a valid application document."
		case storeErr.IsRateLimited():
			return "Could not load data: the document store is rate limiting requests. Try again later."
		case storeErr.IsUnauthorized():
			return "Could not load data: the document store rejected the request."
		}
	}
	return fmt.Sprintf("Failed to fetch data from the gist. Check your network connection and the gist id. Error: %v", err)
}
