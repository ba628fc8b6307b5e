package repositories

import (
	"context"

	"github.com/recipe-hub/api/internal/domain"
)

// DocumentRepository reads and rewrites the single remote application
// document. Replace is a full-document overwrite: no merge, no version check,
// concurrent writers race and the last write wins.
type DocumentRepository interface {
	// Fetch retrieves the named document and parses its content into the
	// application data shape. Reads are unauthenticated.
	Fetch(ctx context.Context, documentID string) (domain.AppData, error)

	// Replace overwrites the document content with the full serialized
	// aggregate and updates the document description from the site
	// description. Requires a non-empty document id and credential.
	Replace(ctx context.Context, documentID, credential string, data domain.AppData) error
}

// StoreError categorises document store failures so services can map them to
// user-facing outcomes without knowing the transport.
type StoreError interface {
	error
	IsNotFound() bool
	IsUnauthorized() bool
	IsRateLimited() bool
	IsMalformed() bool
}
