package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recipe-hub/api/internal/domain"
)

type stubStoreError struct {
	msg          string
	notFound     bool
	unauthorized bool
	rateLimited  bool
	malformed    bool
}

func (e *stubStoreError) Error() string        { return e.msg }
func (e *stubStoreError) IsNotFound() bool     { return e.notFound }
func (e *stubStoreError) IsUnauthorized() bool { return e.unauthorized }
func (e *stubStoreError) IsRateLimited() bool  { return e.rateLimited }
func (e *stubStoreError) IsMalformed() bool    { return e.malformed }

type stubDocumentRepository struct {
	fetchData domain.AppData
	fetchErr  error
	fetchIDs  []string

	replaceErr  error
	replaced    []domain.AppData
	replacedIDs []string
	credentials []string
}

func (s *stubDocumentRepository) Fetch(_ context.Context, documentID string) (domain.AppData, error) {
	s.fetchIDs = append(s.fetchIDs, documentID)
	if s.fetchErr != nil {
		return domain.AppData{}, s.fetchErr
	}
	return s.fetchData.Clone(), nil
}

func (s *stubDocumentRepository) Replace(_ context.Context, documentID, credential string, data domain.AppData) error {
	s.replacedIDs = append(s.replacedIDs, documentID)
	s.credentials = append(s.credentials, credential)
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaced = append(s.replaced, data.Clone())
	return nil
}

func syncedData(gistID, token string) domain.AppData {
	data := domain.DefaultAppData()
	data.Settings.GistID = gistID
	data.Settings.GithubToken = token
	return data
}

func newTestAppService(t *testing.T, store *stubDocumentRepository) AppService {
	t.Helper()
	svc, err := NewAppService(AppServiceDeps{Store: store})
	if err != nil {
		t.Fatalf("failed to build app service: %v", err)
	}
	return svc
}

func TestCanSync(t *testing.T) {
	cases := []struct {
		name       string
		documentID string
		credential string
		want       bool
	}{
		{"configured", "abc123", "token", true},
		{"empty id", "", "token", false},
		{"placeholder id", domain.PlaceholderGistID, "token", false},
		{"missing credential", "abc123", "", false},
		{"whitespace credential", "abc123", "   ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanSync(tc.documentID, tc.credential, domain.PlaceholderGistID)
			if got != tc.want {
				t.Fatalf("CanSync(%q, %q) = %v, want %v", tc.documentID, tc.credential, got, tc.want)
			}
		})
	}
}

func TestLoadPlaceholderEntersDemoModeWithoutFetch(t *testing.T) {
	store := &stubDocumentRepository{}
	svc := newTestAppService(t, store)

	snap := svc.Load(context.Background(), domain.PlaceholderGistID)

	if len(store.fetchIDs) != 0 {
		t.Fatalf("expected no remote fetch, got %v", store.fetchIDs)
	}
	if snap.State != LoadStateLoaded {
		t.Fatalf("expected loaded state, got %s", snap.State)
	}
	if !snap.DemoMode {
		t.Fatal("expected demo mode")
	}
	if snap.Data == nil || snap.Data.Settings.SiteName != "Recipe Hub" {
		t.Fatal("expected compiled-in defaults as model data")
	}
}

func TestLoadFetchesAndAdoptsDocument(t *testing.T) {
	remote := syncedData("abc123", "token")
	remote.Settings.SiteName = "Remote Site"
	store := &stubDocumentRepository{fetchData: remote}
	svc := newTestAppService(t, store)

	snap := svc.Load(context.Background(), "abc123")

	if len(store.fetchIDs) != 1 || store.fetchIDs[0] != "abc123" {
		t.Fatalf("expected one fetch against abc123, got %v", store.fetchIDs)
	}
	if snap.State != LoadStateLoaded || snap.DemoMode {
		t.Fatalf("expected loaded non-demo state, got %+v", snap)
	}
	if snap.Data.Settings.SiteName != "Remote Site" {
		t.Fatalf("expected remote document adopted, got %q", snap.Data.Settings.SiteName)
	}
	if snap.ActiveGistID != "abc123" {
		t.Fatalf("expected active id abc123, got %q", snap.ActiveGistID)
	}
}

func TestLoadFailureYieldsErrorStateWithoutData(t *testing.T) {
	store := &stubDocumentRepository{fetchErr: &stubStoreError{msg: "gone", notFound: true}}
	svc := newTestAppService(t, store)

	snap := svc.Load(context.Background(), "abc123")

	if snap.State != LoadStateError {
		t.Fatalf("expected error state, got %s", snap.State)
	}
	if snap.Data != nil {
		t.Fatal("expected nil data after failed load, no stale fallback")
	}
	if !strings.Contains(snap.Message, "abc123") {
		t.Fatalf("expected failure message to name the gist id, got %q", snap.Message)
	}
	if len(store.fetchIDs) != 1 {
		t.Fatalf("expected exactly one fetch attempt per load, got %d", len(store.fetchIDs))
	}
}

func TestReloadAfterFailureRecovers(t *testing.T) {
	store := &stubDocumentRepository{fetchErr: &stubStoreError{msg: "down"}}
	svc := newTestAppService(t, store)

	if snap := svc.Load(context.Background(), "abc123"); snap.State != LoadStateError {
		t.Fatalf("expected error state, got %s", snap.State)
	}

	store.fetchErr = nil
	store.fetchData = syncedData("abc123", "token")

	snap := svc.Reload(context.Background())
	if snap.State != LoadStateLoaded {
		t.Fatalf("expected reload to recover, got %s", snap.State)
	}
	if len(store.fetchIDs) != 2 || store.fetchIDs[1] != "abc123" {
		t.Fatalf("expected reload to target the active id, got %v", store.fetchIDs)
	}
}

func TestSaveSyncsWhenConfigured(t *testing.T) {
	store := &stubDocumentRepository{fetchData: syncedData("abc123", "token")}
	svc := newTestAppService(t, store)
	svc.Load(context.Background(), "abc123")

	next := syncedData("abc123", "token")
	next.Settings.SiteName = "Edited"

	result, err := svc.Save(context.Background(), next)
	if err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !result.Synced || result.LocalOnly || result.Reloaded {
		t.Fatalf("expected synced-only result, got %+v", result)
	}
	if len(store.replaced) != 1 || store.replaced[0].Settings.SiteName != "Edited" {
		t.Fatal("expected full replacement aggregate written to the store")
	}
	if store.credentials[0] != "token" {
		t.Fatalf("expected settings token used as credential, got %q", store.credentials[0])
	}
	if svc.Snapshot().Data.Settings.SiteName != "Edited" {
		t.Fatal("expected model to adopt the saved aggregate")
	}
}

func TestSaveRemoteFailureLeavesModelUntouched(t *testing.T) {
	store := &stubDocumentRepository{fetchData: syncedData("abc123", "token")}
	svc := newTestAppService(t, store)
	svc.Load(context.Background(), "abc123")

	storeErr := &stubStoreError{msg: "denied", unauthorized: true}
	store.replaceErr = storeErr

	next := syncedData("abc123", "token")
	next.Settings.SiteName = "Edited"

	_, err := svc.Save(context.Background(), next)
	if err == nil {
		t.Fatal("expected save error")
	}
	var got *stubStoreError
	if !errors.As(err, &got) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
	if svc.Snapshot().Data.Settings.SiteName == "Edited" {
		t.Fatal("expected model unchanged after failed remote write")
	}
}

func TestSaveWithChangedGistIDReloads(t *testing.T) {
	store := &stubDocumentRepository{fetchData: syncedData("old-id", "token")}
	svc := newTestAppService(t, store)
	svc.Load(context.Background(), "old-id")

	store.fetchData = syncedData("new-id", "token")
	next := syncedData("new-id", "token")

	result, err := svc.Save(context.Background(), next)
	if err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !result.Synced || !result.Reloaded {
		t.Fatalf("expected synced and reloaded result, got %+v", result)
	}
	if store.replacedIDs[0] != "new-id" {
		t.Fatalf("expected write against new id, got %q", store.replacedIDs[0])
	}
	if last := store.fetchIDs[len(store.fetchIDs)-1]; last != "new-id" {
		t.Fatalf("expected reload against new id, got %q", last)
	}
	if svc.Snapshot().ActiveGistID != "new-id" {
		t.Fatalf("expected active id updated, got %q", svc.Snapshot().ActiveGistID)
	}
}

func TestSaveInDemoModeIsLocalOnly(t *testing.T) {
	store := &stubDocumentRepository{}
	svc := newTestAppService(t, store)
	svc.Load(context.Background(), "")

	next := domain.DefaultAppData()
	next.Settings.SiteName = "Draft"

	result, err := svc.Save(context.Background(), next)
	if err != nil {
		t.Fatalf("expected demo-mode save to succeed, got %v", err)
	}
	if !result.LocalOnly || result.Synced {
		t.Fatalf("expected local-only result, got %+v", result)
	}
	if len(store.replacedIDs) != 0 {
		t.Fatal("expected no remote write in demo mode")
	}
	if svc.Snapshot().Data.Settings.SiteName != "Draft" {
		t.Fatal("expected local adoption of the draft")
	}
}

func TestSaveOnConfiguredInstallWithLostCredentials(t *testing.T) {
	store := &stubDocumentRepository{fetchData: syncedData("abc123", "token")}
	svc := newTestAppService(t, store)
	svc.Load(context.Background(), "abc123")

	next := syncedData("abc123", "")

	result, err := svc.Save(context.Background(), next)
	if !errors.Is(err, ErrMissingSyncCredentials) {
		t.Fatalf("expected ErrMissingSyncCredentials, got %v", err)
	}
	if !result.LocalOnly {
		t.Fatalf("expected local-only result, got %+v", result)
	}
	if svc.Snapshot().Data.Settings.GithubToken != "" {
		t.Fatal("expected the edit adopted locally despite the sync failure")
	}
}

func TestAuthenticate(t *testing.T) {
	store := &stubDocumentRepository{}
	svc := newTestAppService(t, store)

	if err := svc.Authenticate("admin", "password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected failure before any load, got %v", err)
	}

	svc.Load(context.Background(), "")

	if err := svc.Authenticate("admin", "password"); err != nil {
		t.Fatalf("expected default credentials to authenticate, got %v", err)
	}
	if err := svc.Authenticate("Admin", "password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("expected case-sensitive comparison")
	}
	if err := svc.Authenticate("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestSnapshotReturnsDeepCopy(t *testing.T) {
	store := &stubDocumentRepository{}
	svc := newTestAppService(t, store)
	svc.Load(context.Background(), "")

	snap := svc.Snapshot()
	snap.Data.Settings.SiteName = "mutated"

	if svc.Snapshot().Data.Settings.SiteName == "mutated" {
		t.Fatal("expected snapshot mutation to not reach the live model")
	}
}
