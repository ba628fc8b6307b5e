package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v63/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/recipe-hub/api/internal/domain"
	"github.com/recipe-hub/api/internal/platform/observability"
	"github.com/recipe-hub/api/internal/repositories"
)

// DataFilename is the fixed name of the data file inside the gist. The whole
// application dataset lives in this single file.
const DataFilename = "recipe-hub-data.json"

type gistAPI interface {
	Get(ctx context.Context, gistID string) (*github.Gist, *github.Response, error)
	Edit(ctx context.Context, gistID string, gist *github.Gist) (*github.Gist, *github.Response, error)
}

// Config configures the gist-backed document repository.
type Config struct {
	// Filename overrides the data file name, primarily for tests.
	Filename string
	// HTTPClient is used for unauthenticated reads when set.
	HTTPClient *http.Client
	// Reader overrides the read API client, for tests.
	Reader gistAPI
	// WriterFor overrides authenticated client construction, for tests.
	WriterFor func(ctx context.Context, credential string) gistAPI
}

// Repository implements repositories.DocumentRepository against the GitHub
// gist API. Reads are anonymous; writes carry the caller-supplied token, so an
// authenticated client is built per replace call.
type Repository struct {
	filename  string
	reader    gistAPI
	writerFor func(ctx context.Context, credential string) gistAPI
}

var _ repositories.DocumentRepository = (*Repository)(nil)

// NewRepository constructs the gist document repository.
func NewRepository(cfg Config) *Repository {
	filename := strings.TrimSpace(cfg.Filename)
	if filename == "" {
		filename = DataFilename
	}

	reader := cfg.Reader
	if reader == nil {
		reader = github.NewClient(cfg.HTTPClient).Gists
	}

	writerFor := cfg.WriterFor
	if writerFor == nil {
		writerFor = func(ctx context.Context, credential string) gistAPI {
			source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential})
			return github.NewClient(oauth2.NewClient(ctx, source)).Gists
		}
	}

	return &Repository{
		filename:  filename,
		reader:    reader,
		writerFor: writerFor,
	}
}

// Fetch retrieves the gist, locates the data file and parses its content.
func (r *Repository) Fetch(ctx context.Context, documentID string) (domain.AppData, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return domain.AppData{}, notFoundError("gist: fetch document", errors.New("document id is empty"))
	}

	g, resp, err := r.reader.Get(ctx, documentID)
	if err != nil {
		return domain.AppData{}, wrapAPIError("gist: fetch document", resp, err)
	}

	file, ok := g.Files[github.GistFilename(r.filename)]
	if !ok || file.Content == nil {
		return domain.AppData{}, notFoundError("gist: fetch document",
			fmt.Errorf("gist found, but the file %q is missing", r.filename))
	}

	data, err := parseDocument([]byte(file.GetContent()))
	if err != nil {
		return domain.AppData{}, malformedError("gist: fetch document", err)
	}

	observability.FromContext(ctx).Debug("gist document fetched",
		zap.String("gist_id", documentID),
		zap.Int("recipes", len(data.Recipes)),
		zap.Int("ads", len(data.Ads)),
	)
	return data, nil
}

// Replace overwrites the data file with the full serialized aggregate and
// refreshes the gist description from the site description.
func (r *Repository) Replace(ctx context.Context, documentID, credential string, data domain.AppData) error {
	documentID = strings.TrimSpace(documentID)
	credential = strings.TrimSpace(credential)
	if documentID == "" {
		return notFoundError("gist: replace document", errors.New("document id is empty"))
	}
	if credential == "" {
		return &Error{op: "gist: replace document", err: errors.New("credential is empty"), unauthorized: true}
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("gist: replace document: encode: %w", err)
	}

	payload := &github.Gist{
		Description: github.String(data.Settings.SiteDescription),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(r.filename): {Content: github.String(string(content))},
		},
	}

	writer := r.writerFor(ctx, credential)
	if _, resp, err := writer.Edit(ctx, documentID, payload); err != nil {
		return wrapAPIError("gist: replace document", resp, err)
	}

	observability.FromContext(ctx).Info("gist document replaced",
		zap.String("gist_id", documentID),
		zap.Int("bytes", len(content)),
	)
	return nil
}

// parseDocument decodes the file content and enforces the aggregate shape:
// all three top-level fields must be present, or the load fails outright.
func parseDocument(content []byte) (domain.AppData, error) {
	var raw struct {
		Settings *domain.Settings `json:"settings"`
		Recipes  *[]domain.Recipe `json:"recipes"`
		Ads      *[]domain.Ad     `json:"ads"`
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return domain.AppData{}, fmt.Errorf("content is not valid JSON: %w", err)
	}
	if raw.Settings == nil {
		return domain.AppData{}, errors.New("document is missing the settings field")
	}
	if raw.Recipes == nil {
		return domain.AppData{}, errors.New("document is missing the recipes field")
	}
	if raw.Ads == nil {
		return domain.AppData{}, errors.New("document is missing the ads field")
	}

	return domain.AppData{
		Settings: *raw.Settings,
		Recipes:  *raw.Recipes,
		Ads:      *raw.Ads,
	}, nil
}
