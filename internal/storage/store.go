package storage

import (
	"context"
	"errors"

	"github.com/strata-api/strata/internal/document"
)

// ErrNotFound is returned by FindOne when no document matches the lookup.
var ErrNotFound = errors.New("document not found")

// Store is the storage gateway consumed by the mutation pipeline. Calls are
// blocking and individually atomic; no transaction spans them.
type Store interface {
	// FindOne returns the single document matching the lookup, or
	// ErrNotFound. The lookup may address the identity via the "id" field.
	FindOne(ctx context.Context, resource string, lookup map[string]any) (document.Document, error)

	// Insert persists the documents as one bulk call and returns their
	// assigned identities, one per input document, in input order.
	Insert(ctx context.Context, resource string, docs []document.Document) ([]string, error)

	// Replace swaps the document stored at id with the given one.
	Replace(ctx context.Context, resource string, id string, doc document.Document) error
}
