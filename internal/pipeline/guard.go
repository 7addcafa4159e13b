package pipeline

import (
	"context"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/storage"
)

// getDocument retrieves the current representation of a document for an
// edit. The caller must reference that representation through a matching
// precondition token or the edit is refused. This is the pipeline's only
// concurrency control: no locks, just rejection of stale fingerprints.
func (p *Pipeline) getDocument(ctx context.Context, req *Request, lookup map[string]any) (document.Document, error) {
	doc, err := p.store.FindOne(ctx, req.Resource, lookup)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.IfMatch == "" {
		return nil, ErrPreconditionRequired
	}

	// Documents created outside the API may lack timestamp meta fields;
	// default them before fingerprinting so the comparison does not depend
	// on where the document originated.
	document.Normalize(doc)

	if req.IfMatch != document.Etag(doc) {
		return nil, ErrPreconditionFailed
	}
	return doc, nil
}
