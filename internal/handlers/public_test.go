package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/recipe-hub/api/internal/domain"
	"github.com/recipe-hub/api/internal/services"
	"github.com/recipe-hub/api/internal/session"
)

// memSessions keeps session state in memory so handler tests can observe
// saves without cookie mechanics.
type memSessions struct {
	data    session.Data
	saves   int
	cleared bool
}

func (m *memSessions) Get(*http.Request) session.Data { return m.data }

func (m *memSessions) Save(_ http.ResponseWriter, data session.Data) {
	m.data = data
	m.saves++
}

func (m *memSessions) Clear(http.ResponseWriter) {
	m.data = session.Data{}
	m.cleared = true
}

var _ session.Store = (*memSessions)(nil)

type stubApp struct {
	snap    services.Snapshot
	authErr error

	loadIDs    []string
	loadSnap   services.Snapshot
	saveResult services.SaveResult
	saveErr    error
}

func (s *stubApp) Load(_ context.Context, documentID string) services.Snapshot {
	s.loadIDs = append(s.loadIDs, documentID)
	return s.loadSnap
}

func (s *stubApp) Reload(ctx context.Context) services.Snapshot { return s.Load(ctx, s.snap.ActiveGistID) }
func (s *stubApp) Snapshot() services.Snapshot                  { return s.snap }

func (s *stubApp) Save(context.Context, domain.AppData) (services.SaveResult, error) {
	return s.saveResult, s.saveErr
}

func (s *stubApp) Authenticate(username, password string) error { return s.authErr }

var _ services.AppService = (*stubApp)(nil)

func loadedStubApp() *stubApp {
	data := domain.DefaultAppData()
	data.Settings.GistID = "abc123"
	data.Settings.GithubToken = "secret-token"
	return &stubApp{
		snap: services.Snapshot{
			State:        services.LoadStateLoaded,
			Data:         &data,
			ActiveGistID: "abc123",
		},
	}
}

func publicServer(app services.AppService, sessions session.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/public", NewPublicHandlers(app, sessions).Routes)
	return r
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return body
}

func TestHomeOmitsSecrets(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/home", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	raw := rr.Body.String()
	for _, secret := range []string{"secret-token", "githubToken", "adminUser", "adminPass"} {
		if strings.Contains(raw, secret) {
			t.Fatalf("expected %q withheld from the public payload", secret)
		}
	}

	body := decodeJSON(t, rr)
	site, _ := body["site"].(map[string]any)
	if site["siteName"] != "Recipe Hub" {
		t.Fatalf("expected site name in payload, got %v", site)
	}
}

func TestHomeSortsRecipesNewestFirst(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/home", nil))

	body := decodeJSON(t, rr)
	recipes, _ := body["recipes"].([]any)
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	first, _ := recipes[0].(map[string]any)
	// default-shakshuka carries the later creation timestamp.
	if first["id"] != "default-shakshuka" {
		t.Fatalf("expected newest recipe first, got %v", first["id"])
	}
}

func TestHomeRemembersActiveGistID(t *testing.T) {
	app := loadedStubApp()
	sessions := &memSessions{}
	router := publicServer(app, sessions)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/home", nil))

	if sessions.data.GistID != "abc123" {
		t.Fatalf("expected session to remember the gist id, got %q", sessions.data.GistID)
	}

	// A second visit with the id already remembered writes nothing.
	saves := sessions.saves
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/public/home", nil))
	if sessions.saves != saves {
		t.Fatal("expected no session write when the remembered id matches")
	}
}

func TestHomeWhileLoading(t *testing.T) {
	app := &stubApp{snap: services.Snapshot{State: services.LoadStateLoading}}
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/home", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
	if body := decodeJSON(t, rr); body["error"] != "loading" {
		t.Fatalf("expected loading error code, got %v", body["error"])
	}
}

func TestHomeAfterFailedLoad(t *testing.T) {
	app := &stubApp{snap: services.Snapshot{
		State:   services.LoadStateError,
		Message: "Could not load data: gist \"abc123\" or its data file was not found.",
	}}
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/home", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
	body := decodeJSON(t, rr)
	if body["error"] != "load_failed" {
		t.Fatalf("expected load_failed error code, got %v", body["error"])
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "abc123") {
		t.Fatalf("expected the load failure message surfaced, got %q", msg)
	}
}

func TestRecipeDetailLockedWithoutSubscription(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/recipes/default-shakshuka", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := decodeJSON(t, rr)
	if body["locked"] != true {
		t.Fatal("expected recipe locked without subscription")
	}
	if _, ok := body["ingredients"]; ok {
		t.Fatal("expected ingredients withheld while locked")
	}
	if channel, _ := body["youtubeChannel"].(string); channel == "" {
		t.Fatal("expected the channel link in the locked payload")
	}
}

func TestRecipeDetailSubscribed(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{data: session.Data{Subscribed: true}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/recipes/default-shakshuka", nil))

	body := decodeJSON(t, rr)
	if body["locked"] == true {
		t.Fatal("expected unlocked detail for a subscribed session")
	}
	ingredients, _ := body["ingredients"].([]any)
	if len(ingredients) == 0 {
		t.Fatal("expected ingredients in the unlocked payload")
	}
}

func TestRecipeDetailNotFound(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/recipes/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body := decodeJSON(t, rr); body["error"] != "recipe_not_found" {
		t.Fatalf("expected recipe_not_found error code, got %v", body["error"])
	}
}

func TestRecipeDownloadRequiresSubscription(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/recipes/default-shakshuka/download", nil))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
}

func TestRecipeDownload(t *testing.T) {
	app := loadedStubApp()
	router := publicServer(app, &memSessions{data: session.Data{Subscribed: true}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/recipes/default-lentil-soup/download", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "Red_Lentil_Soup.txt") {
		t.Fatalf("expected underscored filename, got %q", cd)
	}
	text := rr.Body.String()
	if !strings.Contains(text, "250g red lentils") || !strings.Contains(text, "1. Sweat the onion") {
		t.Fatalf("expected rendered ingredients and numbered instructions, got %q", text)
	}
}

func TestSubscribe(t *testing.T) {
	app := loadedStubApp()
	sessions := &memSessions{}
	router := publicServer(app, sessions)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/public/subscribe", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !sessions.data.Subscribed {
		t.Fatal("expected subscription acknowledged in the session")
	}
}
